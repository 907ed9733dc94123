package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// SourceFile is the provenance record for one submitted file.
type SourceFile struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	PageCount int    `json:"page_count"`
}

// Fingerprint hashes and sizes a source file. Only content hash and
// byte size are computed; the file's structure is the upstream
// collaborator's business.
func Fingerprint(path string, pageCount int) (SourceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return SourceFile{}, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return SourceFile{}, err
	}

	info, err := f.Stat()
	if err != nil {
		return SourceFile{}, err
	}

	return SourceFile{
		Filename:  info.Name(),
		SizeBytes: size,
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		PageCount: pageCount,
	}, nil
}
