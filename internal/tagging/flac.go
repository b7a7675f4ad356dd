package tagging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"

	"github.com/cesargomez89/tunegrab/internal/domain"
	"github.com/cesargomez89/tunegrab/internal/lyrics"
)

// embedFLAC writes Vorbis comments and an optional cover picture block by
// direct binary manipulation.
//
// We NEVER use the mewkiz/flac encoder to write audio frames — even with
// prediction analysis disabled it corrupts the audio on a passthrough
// rewrite. Instead we:
//  1. Use flac.ParseFile to parse every metadata block.
//  2. Measure where the audio section begins in the original file.
//  3. Encode only the new metadata blocks to a byte buffer.
//  4. Write: "fLaC" marker + new metadata bytes + verbatim raw audio bytes.
func (e *Embedder) embedFLAC(path string, track domain.TrackMetadata, enrichment *domain.EnrichmentResult, opts domain.DownloadOptions) error {
	// ParseFile, not Open: Open skips every block after StreamInfo and
	// leaves stream.Blocks empty, which would put the audio offset inside
	// the old metadata.
	stream, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("%w: opening flac: %v", domain.ErrEmbed, err)
	}

	// Byte offset right after all metadata blocks, where raw audio frames
	// start.
	audioOffset := calcAudioOffset(stream)

	metaBytes, err := buildMetadataBytes(stream, track, enrichment, opts.Embed)
	stream.Close() // done with the parser; re-open below as raw bytes
	if err != nil {
		return fmt.Errorf("%w: building flac metadata: %v", domain.ErrEmbed, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: reopening flac: %v", domain.ErrEmbed, err)
	}
	defer f.Close()

	if _, err := f.Seek(audioOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking to audio section: %v", domain.ErrEmbed, err)
	}

	// Write to a temp file in the same directory for an atomic rename.
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "*.flac.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", domain.ErrEmbed, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write([]byte("fLaC")); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: writing fLaC magic: %v", domain.ErrEmbed, err)
	}
	if _, err := tmpFile.Write(metaBytes); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: writing metadata blocks: %v", domain.ErrEmbed, err)
	}
	if _, err := io.Copy(tmpFile, f); err != nil {
		tmpFile.Close()
		return fmt.Errorf("%w: copying audio data: %v", domain.ErrEmbed, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", domain.ErrEmbed, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replacing flac file: %v", domain.ErrEmbed, err)
	}
	success = true
	return nil
}

// calcAudioOffset returns the byte offset where audio frames begin.
// FLAC stream layout:
//
//	[4]  "fLaC" magic
//	For each metadata block:
//	  [1]  flags byte (last-metadata-block bit | block-type)
//	  [3]  24-bit big-endian length of block data
//	  [N]  block data
func calcAudioOffset(stream *flac.Stream) int64 {
	// "fLaC" magic plus the StreamInfo block (4-byte header, 34-byte body),
	// which the parser keeps in stream.Info rather than stream.Blocks.
	offset := int64(4 + 4 + 34)
	for _, b := range stream.Blocks {
		offset += 4 + int64(b.Header.Length)
	}
	return offset
}

// buildMetadataBytes constructs the binary form of the new metadata blocks
// (without the leading "fLaC" magic). It keeps the original StreamInfo and
// any SeekTable, replaces the VorbisComment, and appends a Picture block
// when cover art is present.
func buildMetadataBytes(stream *flac.Stream, track domain.TrackMetadata, enrichment *domain.EnrichmentResult, toggles domain.EmbedToggles) ([]byte, error) {
	var ordered []*meta.Block

	// StreamInfo is mandatory and always first.
	ordered = append(ordered, &meta.Block{
		Header: meta.Header{Type: meta.TypeStreamInfo},
		Body:   stream.Info,
	})

	for _, b := range stream.Blocks {
		if b.Type == meta.TypeSeekTable {
			ordered = append(ordered, b)
		}
	}

	ordered = append(ordered, &meta.Block{
		Header: meta.Header{Type: meta.TypeVorbisComment},
		Body:   newVorbisComment(track, enrichment, toggles),
	})

	if enrichment != nil && len(enrichment.Cover) > 0 {
		ordered = append(ordered, &meta.Block{
			Header: meta.Header{Type: meta.TypePicture},
			Body: &meta.Picture{
				Type: 3, // Cover (front)
				MIME: detectMIME(enrichment.Cover),
				Desc: "Front Cover",
				Data: enrichment.Cover,
			},
		})
	}

	var buf bytes.Buffer
	for i, b := range ordered {
		blockBytes, err := encodeMetaBlock(b, i == len(ordered)-1)
		if err != nil {
			return nil, fmt.Errorf("encoding block %v: %w", b.Type, err)
		}
		buf.Write(blockBytes)
	}
	return buf.Bytes(), nil
}

func newVorbisComment(track domain.TrackMetadata, enrichment *domain.EnrichmentResult, toggles domain.EmbedToggles) *meta.VorbisComment {
	vc := &meta.VorbisComment{Vendor: "tunegrab"}

	addTag := func(enabled bool, name, value string) {
		if enabled && value != "" {
			vc.Tags = append(vc.Tags, [2]string{name, value})
		}
	}

	addTag(toggles.Title, "TITLE", track.Title)

	// Multiple artists get individual ARTIST tags (recommended by the
	// Vorbis spec).
	if toggles.Artist {
		for _, a := range splitList(track.Artist) {
			addTag(true, "ARTIST", a)
		}
	}
	if toggles.AlbumArtist {
		for _, a := range splitList(track.AlbumArtist) {
			addTag(true, "ALBUMARTIST", a)
		}
	}

	addTag(toggles.Album, "ALBUM", track.Album)
	addTag(toggles.Year, "DATE", track.Year())
	addTag(toggles.Genre, "GENRE", strings.Join(track.Genres, ", "))
	addTag(toggles.Composer, "COMPOSER", track.Composer)
	addTag(toggles.Comment, "DESCRIPTION", track.Comment)
	if toggles.TrackNumber && track.TrackNumber > 0 {
		addTag(true, "TRACKNUMBER", fmt.Sprintf("%d", track.TrackNumber))
	}
	if toggles.DiscNumber && track.DiscNumber > 0 {
		addTag(true, "DISCNUMBER", fmt.Sprintf("%d", track.DiscNumber))
	}
	addTag(true, "RELEASEDATE", track.ReleaseDate)
	addTag(true, "URL", track.SourceURL)

	if enrichment != nil && enrichment.Lyrics != nil {
		if synced := enrichment.Lyrics.Synced; synced != nil {
			addTag(true, "LYRICS", lyrics.FormatLRC(synced))
		} else if unsynced := enrichment.Lyrics.Unsynced; unsynced != nil {
			addTag(true, "UNSYNCEDLYRICS", unsynced.Text)
		}
	}

	return vc
}

// encodeMetaBlock serialises one metadata block to its binary FLAC form
// ([1-byte flags][3-byte length][N-byte body]).
func encodeMetaBlock(b *meta.Block, isLast bool) ([]byte, error) {
	body, err := encodeBlockBody(b)
	if err != nil {
		return nil, err
	}

	length := uint32(len(body))
	if length > 0xFFFFFF {
		return nil, fmt.Errorf("block body too large: %d bytes", length)
	}

	// Flags byte: bit 7 = isLast, bits 0-6 = block type.
	flags := byte(b.Type)
	if isLast {
		flags |= 0x80
	}

	out := make([]byte, 0, 4+length)
	out = append(out, flags)
	out = append(out, byte(length>>16), byte(length>>8), byte(length))
	out = append(out, body...)
	return out, nil
}

func encodeBlockBody(b *meta.Block) ([]byte, error) {
	switch b.Type {
	case meta.TypeStreamInfo:
		return encodeStreamInfo(b.Body.(*meta.StreamInfo))
	case meta.TypeSeekTable:
		return encodeSeekTable(b.Body.(*meta.SeekTable))
	case meta.TypeVorbisComment:
		return encodeVorbisComment(b.Body.(*meta.VorbisComment))
	case meta.TypePicture:
		return encodePicture(b.Body.(*meta.Picture))
	default:
		return nil, fmt.Errorf("unsupported block type for manual encoding: %v", b.Type)
	}
}

// encodeStreamInfo encodes the 34-byte StreamInfo block body.
func encodeStreamInfo(si *meta.StreamInfo) ([]byte, error) {
	buf := make([]byte, 34)
	binary.BigEndian.PutUint16(buf[0:2], si.BlockSizeMin)
	binary.BigEndian.PutUint16(buf[2:4], si.BlockSizeMax)
	buf[4] = byte(si.FrameSizeMin >> 16)
	buf[5] = byte(si.FrameSizeMin >> 8)
	buf[6] = byte(si.FrameSizeMin)
	buf[7] = byte(si.FrameSizeMax >> 16)
	buf[8] = byte(si.FrameSizeMax >> 8)
	buf[9] = byte(si.FrameSizeMax)
	// Bytes 10-17: sample rate (20b) | channels-1 (3b) | bits/sample-1 (5b)
	// | total samples (36b), packed big-endian.
	packed := uint64(si.SampleRate)<<44 | uint64(si.NChannels-1)<<41 | uint64(si.BitsPerSample-1)<<36 | si.NSamples
	binary.BigEndian.PutUint64(buf[10:18], packed)
	copy(buf[18:34], si.MD5sum[:])
	return buf, nil
}

func encodeSeekTable(st *meta.SeekTable) ([]byte, error) {
	buf := make([]byte, len(st.Points)*18)
	for i, p := range st.Points {
		off := i * 18
		binary.BigEndian.PutUint64(buf[off:off+8], p.SampleNum)
		binary.BigEndian.PutUint64(buf[off+8:off+16], p.Offset)
		binary.BigEndian.PutUint16(buf[off+16:off+18], p.NSamples)
	}
	return buf, nil
}

// encodeVorbisComment uses the Vorbis comment framing format: little-endian
// lengths, UTF-8 strings.
func encodeVorbisComment(vc *meta.VorbisComment) ([]byte, error) {
	var buf bytes.Buffer
	writeLE32 := func(n uint32) {
		b := [4]byte{}
		binary.LittleEndian.PutUint32(b[:], n)
		buf.Write(b[:])
	}

	vendorBytes := []byte(vc.Vendor)
	writeLE32(uint32(len(vendorBytes)))
	buf.Write(vendorBytes)

	writeLE32(uint32(len(vc.Tags)))
	for _, tag := range vc.Tags {
		entry := tag[0] + "=" + tag[1]
		writeLE32(uint32(len(entry)))
		buf.WriteString(entry)
	}
	return buf.Bytes(), nil
}

func encodePicture(pic *meta.Picture) ([]byte, error) {
	mimeBytes := []byte(pic.MIME)
	descBytes := []byte(pic.Desc)

	size := 4 + 4 + len(mimeBytes) + 4 + len(descBytes) + 4 + 4 + 4 + 4 + 4 + len(pic.Data)
	buf := make([]byte, 0, size)
	write32 := func(v uint32) { buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }

	write32(uint32(pic.Type))
	write32(uint32(len(mimeBytes)))
	buf = append(buf, mimeBytes...)
	write32(uint32(len(descBytes)))
	buf = append(buf, descBytes...)
	write32(pic.Width)
	write32(pic.Height)
	write32(pic.Depth)
	write32(pic.NPalColors)
	write32(uint32(len(pic.Data)))
	buf = append(buf, pic.Data...)
	return buf, nil
}
