package zip

import (
	"archive/zip"
	"bytes"
)

// Asset is one file destined for an archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// Archive packs the assets into an in-memory zip. Assets that fail to write
// are skipped rather than aborting the whole archive.
func Archive(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			continue
		}
		_, _ = w.Write(asset.Data)
	}
	_ = zw.Close()
	return buf.Bytes()
}
