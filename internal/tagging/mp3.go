package tagging

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/cesargomez89/tunegrab/internal/domain"
)

// embedMP3 writes ID3v2.4 tags. Synced lyrics go into a SYLT frame with
// millisecond timestamps; plain lyrics fall back to USLT.
func (e *Embedder) embedMP3(path string, track domain.TrackMetadata, enrichment *domain.EnrichmentResult, opts domain.DownloadOptions) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: opening mp3: %v", domain.ErrEmbed, err)
	}
	defer tag.Close()

	tag.SetVersion(4)

	toggles := opts.Embed
	if toggles.Title && track.Title != "" {
		tag.SetTitle(track.Title)
	}
	if toggles.Artist && track.Artist != "" {
		tag.SetArtist(formatList(track.Artist))
	}
	if toggles.Album && track.Album != "" {
		tag.SetAlbum(track.Album)
	}
	if toggles.Year && track.Year() != "" {
		tag.SetYear(track.Year())
	}
	if toggles.Genre && len(track.Genres) > 0 {
		tag.SetGenre(strings.Join(track.Genres, ", "))
	}
	if toggles.AlbumArtist && track.AlbumArtist != "" {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), formatList(track.AlbumArtist))
	}
	if toggles.TrackNumber && track.TrackNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), fmt.Sprintf("%d", track.TrackNumber))
	}
	if toggles.DiscNumber && track.DiscNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Part of a set"), tag.DefaultEncoding(), fmt.Sprintf("%d", track.DiscNumber))
	}
	if toggles.Composer && track.Composer != "" {
		tag.AddTextFrame(tag.CommonID("Composer"), tag.DefaultEncoding(), track.Composer)
	}
	if toggles.Comment && track.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     track.Comment,
		})
	}
	if track.ReleaseDate != "" {
		tag.AddTextFrame(tag.CommonID("Release time"), tag.DefaultEncoding(), track.ReleaseDate)
	}
	if track.SourceURL != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: "SOURCE_URL",
			Value:       track.SourceURL,
		})
	}

	if len(enrichment.Cover) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    detectMIME(enrichment.Cover),
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     enrichment.Cover,
		})
	}

	if result := enrichment.Lyrics; result != nil {
		switch {
		case result.Synced != nil:
			tag.AddFrame("SYLT", id3v2.UnknownFrame{Body: encodeSYLT(result.Synced)})
		case result.Unsynced != nil:
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          "eng",
				ContentDescriptor: "Lyrics",
				Lyrics:            result.Unsynced.Text,
			})
		}
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: saving mp3 tags: %v", domain.ErrEmbed, err)
	}
	return nil
}

// encodeSYLT builds an ID3v2.4 SYLT frame body: UTF-8 encoding, millisecond
// timestamp format, lyrics content type, then one null-terminated text plus
// 32-bit big-endian timestamp per line. Any global LRC offset is folded into
// the timestamps here.
func encodeSYLT(synced *domain.SyncedLyrics) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x03)    // UTF-8
	buf.WriteString("eng") // language
	buf.WriteByte(0x02)    // timestamps are milliseconds
	buf.WriteByte(0x01)    // content type: lyrics
	buf.WriteString("Synced Lyrics")
	buf.WriteByte(0x00)

	for _, line := range synced.Lines {
		ts := line.TimestampMS + synced.Offset
		if ts < 0 {
			ts = 0
		}
		buf.WriteString(line.Text)
		buf.WriteByte(0x00)
		buf.Write([]byte{byte(ts >> 24), byte(ts >> 16), byte(ts >> 8), byte(ts)})
	}
	return buf.Bytes()
}

// detectMIME sniffs the image type so PNG covers are not labelled image/jpeg.
func detectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
