package catalog

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/trackquiz/backend/internal/models"
	"github.com/zmb3/spotify/v2"
)

// playlistRef matches a full Spotify playlist link or URI.
var playlistRef = regexp.MustCompile(`(?:spotify\.com/playlist/|spotify:playlist:)([A-Za-z0-9]+)`)
var bareID = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ParsePlaylistInput accepts a playlist ID, a full open.spotify.com
// link, or a spotify: URI and returns the bare playlist ID.
func ParsePlaylistInput(input string) string {
	if m := playlistRef.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if bareID.MatchString(input) {
		return input
	}
	return input
}

// SpotifyProvider pulls playlist tracks from the Spotify Web API. The
// provider is read-only: tracks are fetched, deduplicated upstream and
// handed to the caller for a wholesale catalog replace.
type SpotifyProvider struct {
	client *spotify.Client
}

func NewSpotifyProvider(client *spotify.Client) *SpotifyProvider {
	return &SpotifyProvider{client: client}
}

// FetchPlaylist loads every usable track of the playlist: local files
// and non-track items are skipped, release year is parsed from the
// album release date, and artist genre tags are attached when the
// artist lookup succeeds.
func (p *SpotifyProvider) FetchPlaylist(ctx context.Context, playlistID string) ([]models.Track, error) {
	res, err := p.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}

	var tracks []models.Track
	artistIDs := make(map[string]spotify.ID)
	trackArtist := make(map[string]string)

	page := res.Tracks
	for {
		for _, item := range page.Tracks {
			t := item.Track
			if item.IsLocal || t.ID == "" {
				continue
			}
			track := models.Track{
				ID:         string(t.ID),
				Title:      t.Name,
				Year:       releaseYear(t.Album.ReleaseDate),
				Popularity: int(t.Popularity),
				PreviewURL: t.PreviewURL,
			}
			if len(t.Artists) > 0 {
				track.Artist = t.Artists[0].Name
				artistIDs[t.Artists[0].Name] = t.Artists[0].ID
				trackArtist[track.ID] = t.Artists[0].Name
			}
			tracks = append(tracks, track)
		}

		err = p.client.NextPage(ctx, &page)
		if err == spotify.ErrNoMorePages {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("playlist pagination: %w", err)
		}
	}

	genres := p.artistGenres(ctx, artistIDs)
	for i := range tracks {
		tracks[i].Genres = genres[trackArtist[tracks[i].ID]]
	}

	return tracks, nil
}

// artistGenres resolves genre tags per artist name in batches of 50.
// Genre lookup is best-effort; a failed batch just leaves those tracks
// untagged.
func (p *SpotifyProvider) artistGenres(ctx context.Context, artistIDs map[string]spotify.ID) map[string][]string {
	genres := make(map[string][]string, len(artistIDs))
	if len(artistIDs) == 0 {
		return genres
	}

	names := make([]string, 0, len(artistIDs))
	ids := make([]spotify.ID, 0, len(artistIDs))
	for name, id := range artistIDs {
		names = append(names, name)
		ids = append(ids, id)
	}

	for i := 0; i < len(ids); i += 50 {
		end := i + 50
		if end > len(ids) {
			end = len(ids)
		}
		artists, err := p.client.GetArtists(ctx, ids[i:end]...)
		if err != nil {
			log.Printf("WARN: artist genre lookup failed for batch %d-%d: %v", i, end, err)
			continue
		}
		for j, a := range artists {
			if a != nil {
				genres[names[i+j]] = a.Genres
			}
		}
	}
	return genres
}

// releaseYear extracts the four-digit year from a Spotify release date
// ("2006", "2006-01" or "2006-01-13"). Unparseable dates fall back to 1900.
func releaseYear(releaseDate string) int {
	if len(releaseDate) >= 4 {
		if y, err := strconv.Atoi(releaseDate[:4]); err == nil {
			return y
		}
	}
	return 1900
}

// SeedTracks is the fallback catalog used when a playlist yields no
// usable tracks, so the quiz always has something to serve.
func SeedTracks() []models.Track {
	return []models.Track{
		{
			ID:         "4uLU6hMCjMI75M1A2tKUQC",
			Title:      "Never Gonna Give You Up",
			Artist:     "Rick Astley",
			Year:       1987,
			Popularity: 78,
			Genres:     []string{"pop"},
		},
		{
			ID:         "3n3Ppam7vgaVa1iaRUc9Lp",
			Title:      "Mr. Brightside",
			Artist:     "The Killers",
			Year:       2003,
			Popularity: 85,
			Genres:     []string{"rock"},
		},
	}
}
