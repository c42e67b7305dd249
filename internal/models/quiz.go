package models

// ── API Request/Response Types ────────────────────────────

type LoadPlaylistRequest struct {
	Playlist string `json:"playlist"`
}

type LoadPlaylistResponse struct {
	PlaylistID  string `json:"playlist_id"`
	TracksAdded int    `json:"tracks_added"`
	UsedSeed    bool   `json:"used_seed"`
}

type QuestionResponse struct {
	TrackID        string       `json:"track_id"`
	QuestionType   QuestionType `json:"question_type"`
	Approach       Approach     `json:"approach"`
	PreviewURL     string       `json:"preview_url,omitempty"`
	SnippetSeconds int          `json:"snippet_seconds"`
	Hints          []string     `json:"hints,omitempty"`
}

type SubmitGuessRequest struct {
	Guess string `json:"guess"`
}

type GuessResult struct {
	Correct       bool    `json:"correct"`
	Feedback      string  `json:"feedback"`
	TimeTaken     float64 `json:"time_taken_seconds"`
	NewRating     int     `json:"new_rating"`
	CorrectArtist string  `json:"correct_artist"`
	CorrectTitle  string  `json:"correct_title"`
	CorrectYear   int     `json:"correct_year"`
}

type RankingTaskResponse struct {
	Tracks   []Track     `json:"tracks"`
	Mode     RankingMode `json:"mode"`
	Approach Approach    `json:"approach"`
}

type SubmitRankingRequest struct {
	Order      []string `json:"order"`
	Difficulty int      `json:"difficulty"`
}

type RankingResultResponse struct {
	Approach     Approach `json:"approach"`
	FinalOrder   []string `json:"final_order"`
	CorrectOrder []string `json:"correct_order"`
	Correctness  float64  `json:"correctness"`
	Difficulty   int      `json:"difficulty"`
	Outcome      float64  `json:"outcome"`
	NewRating    int      `json:"new_rating"`
}

type SettingsRequest struct {
	RankingMode string `json:"ranking_mode,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

type PreferencesRequest struct {
	FavoriteGenres []string `json:"favorite_genres"`
}

type StatsResponse struct {
	Profile  PlayerProfile `json:"profile"`
	Accuracy float64       `json:"accuracy"`
	Level    string        `json:"level"`
	Missed   int           `json:"missed_count"`
}

type ScoreboardEntry struct {
	Username     string  `json:"username"`
	DisplayName  string  `json:"display_name"`
	Accuracy     float64 `json:"accuracy"`
	TotalCorrect int     `json:"total_correct"`
}
