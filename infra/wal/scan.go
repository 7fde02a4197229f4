package wal

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

func fmtSscanfSegment(name string, n *int) (int, error) {
	return fmt.Sscanf(name, "segment-%d.wal", n)
}

// maxSeqInSegment scans one sealed segment and returns the highest sequence
// it holds. Used only by snapshot-driven truncation.
func maxSeqInSegment(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var max uint64
	header := make([]byte, 21)

	for {
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return max, nil
			}
			return max, err
		}

		seq := binary.BigEndian.Uint64(header[1:9])
		if seq > max {
			max = seq
		}

		payloadLen := binary.BigEndian.Uint32(header[17:21])
		if _, err := f.Seek(int64(payloadLen+4), io.SeekCurrent); err != nil {
			return max, err
		}
	}
}
