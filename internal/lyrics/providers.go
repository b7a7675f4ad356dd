package lyrics

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/httpclient"
)

// SyncedProvider yields timestamped lyrics.
type SyncedProvider interface {
	Name() string
	Synced(ctx context.Context, artist, title, query string) (*domain.SyncedLyrics, error)
}

// UnsyncedProvider yields plain-text lyrics.
type UnsyncedProvider interface {
	Name() string
	Unsynced(ctx context.Context, artist, title, query string) (*domain.UnsyncedLyrics, error)
}

// --- LRClib ---

type LRClib struct {
	http    *httpclient.Client
	baseURL string
}

func NewLRClib(http *httpclient.Client) *LRClib {
	return &LRClib{http: http, baseURL: "https://lrclib.net"}
}

func (l *LRClib) Name() string { return "LRClib" }

type lrclibRecord struct {
	SyncedLyrics string `json:"syncedLyrics"`
	PlainLyrics  string `json:"plainLyrics"`
}

func (l *LRClib) search(ctx context.Context, query string) ([]lrclibRecord, error) {
	u := fmt.Sprintf("%s/api/search?q=%s", l.baseURL, url.QueryEscape(query))
	var records []lrclibRecord
	if err := l.http.GetJSON(ctx, u, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (l *LRClib) Synced(ctx context.Context, _, _, query string) (*domain.SyncedLyrics, error) {
	records, err := l.search(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.SyncedLyrics) == "" {
			continue
		}
		lyrics, err := ParseLRC(rec.SyncedLyrics, l.Name())
		if err != nil {
			continue
		}
		return lyrics, nil
	}
	return nil, fmt.Errorf("%w: no synced lyrics on LRClib", domain.ErrNoSearchResults)
}

func (l *LRClib) Unsynced(ctx context.Context, _, _, query string) (*domain.UnsyncedLyrics, error) {
	records, err := l.search(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.PlainLyrics) == "" {
			continue
		}
		return &domain.UnsyncedLyrics{
			Text:   CleanText(rec.PlainLyrics),
			Source: l.Name(),
		}, nil
	}
	return nil, fmt.Errorf("%w: no plain lyrics on LRClib", domain.ErrNoSearchResults)
}

// --- lyrics.ovh ---

type LyricsOvh struct {
	http    *httpclient.Client
	baseURL string
}

func NewLyricsOvh(http *httpclient.Client) *LyricsOvh {
	return &LyricsOvh{http: http, baseURL: "https://api.lyrics.ovh"}
}

func (l *LyricsOvh) Name() string { return "Lyrics.ovh" }

type ovhResponse struct {
	Lyrics string `json:"lyrics"`
}

// Synced queries the sync endpoint, which serves LRC-formatted text when the
// track has timings.
func (l *LyricsOvh) Synced(ctx context.Context, artist, title, _ string) (*domain.SyncedLyrics, error) {
	u := fmt.Sprintf("%s/sync/%s/%s", l.baseURL, url.PathEscape(artist), url.PathEscape(title))
	var resp ovhResponse
	if err := l.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Lyrics) == "" {
		return nil, fmt.Errorf("%w: no synced lyrics on lyrics.ovh", domain.ErrNoSearchResults)
	}
	return ParseLRC(resp.Lyrics, l.Name())
}

func (l *LyricsOvh) Unsynced(ctx context.Context, artist, title, _ string) (*domain.UnsyncedLyrics, error) {
	u := fmt.Sprintf("%s/v1/%s/%s", l.baseURL, url.PathEscape(artist), url.PathEscape(title))
	var resp ovhResponse
	if err := l.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Lyrics) == "" {
		return nil, fmt.Errorf("%w: no lyrics on lyrics.ovh", domain.ErrNoSearchResults)
	}
	return &domain.UnsyncedLyrics{Text: CleanText(resp.Lyrics), Source: l.Name()}, nil
}

// --- Musixmatch ---

type Musixmatch struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

func NewMusixmatch(http *httpclient.Client, apiKey string) *Musixmatch {
	return &Musixmatch{http: http, baseURL: "https://api.musixmatch.com/ws/1.1", apiKey: apiKey}
}

func (m *Musixmatch) Name() string { return "Musixmatch" }

type musixmatchResponse struct {
	Message struct {
		Body struct {
			Lyrics struct {
				LyricsBody string `json:"lyrics_body"`
			} `json:"lyrics"`
		} `json:"body"`
	} `json:"message"`
}

func (m *Musixmatch) Unsynced(ctx context.Context, artist, title, _ string) (*domain.UnsyncedLyrics, error) {
	u := fmt.Sprintf("%s/matcher.lyrics.get?q_track=%s&q_artist=%s&apikey=%s",
		m.baseURL, url.QueryEscape(title), url.QueryEscape(artist), url.QueryEscape(m.apiKey))

	var resp musixmatchResponse
	if err := m.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Message.Body.Lyrics.LyricsBody) == "" {
		return nil, fmt.Errorf("%w: no lyrics on Musixmatch", domain.ErrNoSearchResults)
	}
	return &domain.UnsyncedLyrics{
		Text:   CleanText(resp.Message.Body.Lyrics.LyricsBody),
		Source: m.Name(),
	}, nil
}

// --- AZLyrics ---

type AZLyrics struct {
	http      *httpclient.Client
	searchURL string
}

func NewAZLyrics(http *httpclient.Client) *AZLyrics {
	return &AZLyrics{http: http, searchURL: "https://www.google.com/search"}
}

func (a *AZLyrics) Name() string { return "AZLyrics" }

var (
	azURLRe = regexp.MustCompile(`href="(https://www\.azlyrics\.com/lyrics/[^"]+)"`)
	// the page marks the lyrics div with a licensing comment
	azBodyRe = regexp.MustCompile(`(?s)<!-- Usage of azlyrics\.com content by any third-party lyrics provider is prohibited by our licensing agreement\. Sorry about that\. -->(.*?)</div>`)
)

func (a *AZLyrics) Unsynced(ctx context.Context, _, _, query string) (*domain.UnsyncedLyrics, error) {
	searchURL := fmt.Sprintf("%s?q=%s", a.searchURL, url.QueryEscape(query+" site:azlyrics.com"))
	page, err := a.http.Get(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	m := azURLRe.FindSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("%w: no AZLyrics page found", domain.ErrNoSearchResults)
	}

	body, err := a.http.Get(ctx, string(m[1]), nil)
	if err != nil {
		return nil, err
	}

	lm := azBodyRe.FindSubmatch(body)
	if lm == nil {
		return nil, fmt.Errorf("%w: could not extract lyrics from AZLyrics", domain.ErrNoSearchResults)
	}

	text := CleanText(string(lm[1]))
	if text == "" {
		return nil, fmt.Errorf("%w: empty lyrics on AZLyrics", domain.ErrNoSearchResults)
	}
	return &domain.UnsyncedLyrics{Text: text, Source: a.Name()}, nil
}

// --- Genius ---

type Genius struct {
	http        *httpclient.Client
	baseURL     string
	accessToken string
}

func NewGenius(http *httpclient.Client, accessToken string) *Genius {
	return &Genius{http: http, baseURL: "https://genius.com", accessToken: accessToken}
}

func (g *Genius) Name() string { return "Genius" }

var geniusLyricsRes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<div[^>]*data-lyrics-container[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?s)<div[^>]*class="[^"]*lyrics[^"]*"[^>]*>(.*?)</div>`),
}

func (g *Genius) Unsynced(ctx context.Context, _, _, query string) (*domain.UnsyncedLyrics, error) {
	headers := map[string]string{}
	if g.accessToken != "" {
		headers["Authorization"] = "Bearer " + g.accessToken
	}

	searchURL := fmt.Sprintf("%s/search?q=%s", g.baseURL, url.QueryEscape(query))
	page, err := g.http.Get(ctx, searchURL, headers)
	if err != nil {
		return nil, err
	}

	for _, re := range geniusLyricsRes {
		if m := re.FindSubmatch(page); m != nil {
			text := CleanText(string(m[1]))
			if text != "" {
				return &domain.UnsyncedLyrics{Text: text, Source: g.Name()}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no lyrics on Genius", domain.ErrNoSearchResults)
}
