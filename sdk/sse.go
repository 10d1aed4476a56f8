package htdj

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

type sseFrame struct {
	Event string
	Data  []byte
}

// sseParser reads blank-line-delimited SSE frames from a byte stream.
// Incomplete trailing data stays buffered in the reader until more input
// arrives, so frames split at arbitrary chunk boundaries reassemble
// correctly. Lines are stripped of "\n" then "\r", making CRLF and LF
// framing equivalent.
type sseParser struct {
	reader *bufio.Reader
}

func newSSEParser(r io.Reader) *sseParser {
	return &sseParser{reader: bufio.NewReader(r)}
}

// Next returns the next complete frame, or io.EOF once the stream is
// exhausted. A frame with neither data lines nor an event name is a
// protocol no-op and is skipped. Per the SSE spec the event name defaults
// to "message" when the frame carries data but no event field.
func (p *sseParser) Next() (sseFrame, error) {
	var eventType string
	var dataLines []string

	emit := func() sseFrame {
		name := eventType
		if name == "" {
			name = "message"
		}
		return sseFrame{
			Event: name,
			Data:  []byte(strings.Join(dataLines, "\n")),
		}
	}

	for {
		line, err := p.reader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return sseFrame{}, err
		}

		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
		}

		if line == "" {
			if len(dataLines) == 0 && eventType == "" {
				if eof {
					return sseFrame{}, io.EOF
				}
				continue
			}
			return emit(), nil
		}

		if strings.HasPrefix(line, ":") {
			if eof {
				if len(dataLines) == 0 && eventType == "" {
					return sseFrame{}, io.EOF
				}
				return emit(), nil
			}
			continue
		}

		field, value := splitSSEField(line)
		switch field {
		case "event":
			eventType = strings.TrimSpace(value)
		case "data":
			dataLines = append(dataLines, value)
		}

		if eof {
			if len(dataLines) == 0 && eventType == "" {
				return sseFrame{}, io.EOF
			}
			return emit(), nil
		}
	}
}

func splitSSEField(line string) (field string, value string) {
	index := strings.IndexByte(line, ':')
	if index < 0 {
		return line, ""
	}
	field = line[:index]
	value = line[index+1:]
	if strings.HasPrefix(value, " ") {
		value = value[1:]
	}
	return field, value
}
