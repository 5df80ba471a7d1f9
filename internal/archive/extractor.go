// Package archive extracts the CSV files embedded in an export archive.
//
// Exports arrive as ZIP containers, but they cannot be opened with a central
// directory reader: downloads are routinely truncated mid-transfer and the
// complete entries before the truncation point must still be recovered. The
// extractor therefore walks the local-entry records directly and treats any
// malformed entry as the end of usable input for that entry only.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/vladimiradmaev/glucose-sync/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-sync/internal/errors"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
)

const (
	localHeaderSignature = 0x04034b50
	localHeaderSize      = 30

	methodStored   = 0
	methodDeflated = 8

	// Only CSV entries are diabetes data; everything else in the container
	// (PDF reports, device settings) is skipped.
	textFileSuffix = ".csv"
)

// entry is one decoded local-entry header plus the offset of its payload.
type entry struct {
	name       string
	method     uint16
	compSize   int
	dataOffset int
}

// Extract walks buf and returns every CSV file it contains, in container
// order. A corrupt or truncated buffer yields the entries that precede the
// damage; an archive with no CSV entries yields an empty slice. Extract
// never returns an error: container damage is not fatal to a run.
func Extract(buf []byte) []domain.ExtractedFile {
	var files []domain.ExtractedFile

	offset := 0
	for {
		e, next, ok := readEntry(buf, offset)
		if !ok {
			break
		}
		offset = next

		if !strings.HasSuffix(strings.ToLower(e.name), textFileSuffix) {
			continue
		}

		content, err := inflate(buf[e.dataOffset:e.dataOffset+e.compSize], e.method)
		if err != nil {
			logger.Warn("Skipping archive entry", "name", e.name, "error", err)
			continue
		}
		files = append(files, domain.ExtractedFile{Name: e.name, Content: string(content)})
	}

	return files
}

// readEntry decodes the local-entry header at offset. It returns the entry,
// the offset of the next header and false when the remaining buffer is too
// short or no longer starts with the local-entry signature. Every offset is
// bounds-checked before use so a truncated buffer ends the scan cleanly.
func readEntry(buf []byte, offset int) (entry, int, bool) {
	if offset < 0 || offset+localHeaderSize > len(buf) {
		return entry{}, 0, false
	}
	h := buf[offset:]
	if binary.LittleEndian.Uint32(h) != localHeaderSignature {
		return entry{}, 0, false
	}

	method := binary.LittleEndian.Uint16(h[8:])
	compSize := int(binary.LittleEndian.Uint32(h[18:]))
	nameLen := int(binary.LittleEndian.Uint16(h[26:]))
	extraLen := int(binary.LittleEndian.Uint16(h[28:]))

	nameStart := offset + localHeaderSize
	dataStart := nameStart + nameLen + extraLen
	dataEnd := dataStart + compSize
	if nameStart+nameLen > len(buf) || dataEnd > len(buf) || dataEnd < dataStart {
		return entry{}, 0, false
	}

	e := entry{
		name:       string(buf[nameStart : nameStart+nameLen]),
		method:     method,
		compSize:   compSize,
		dataOffset: dataStart,
	}
	return e, dataEnd, true
}

// inflate decodes one entry payload according to its compression method.
func inflate(data []byte, method uint16) ([]byte, error) {
	switch method {
	case methodStored:
		return data, nil
	case methodDeflated:
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, apperrors.New(apperrors.ErrorTypeContainer, "UNSUPPORTED_METHOD",
			fmt.Sprintf("unsupported compression method %d", method))
	}
}
