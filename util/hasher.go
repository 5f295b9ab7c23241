package util

import (
	_ "crypto/sha256" // registers SHA-256 for go-digest
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
	"github.com/taigrr/colorhash"
)

// Hashes a file and returns the hash as a hex string
func GetFileHash(path string) (hash string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrExpectedFile
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return GetHash(file)
}

// GetHash calculates the SHA-256 hash of data from an io.Reader.
// It returns the hash as a hexadecimal string.
func GetHash(r io.Reader) (string, error) {
	d, err := digest.SHA256.FromReader(r)
	if err != nil {
		return "", err
	}
	return d.Encoded(), nil
}

// ArchiveDigest returns the OCI-style digest ("sha256:<hex>") for a hash
// returned by GetHash.
func ArchiveDigest(hash string) string {
	return digest.NewDigestFromEncoded(digest.SHA256, hash).String()
}

// VerifyFileDigest reports whether the file at path matches the digest
// string dgst.
func VerifyFileDigest(path, dgst string) (bool, error) {
	want, err := digest.Parse(dgst)
	if err != nil {
		return false, err
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	verifier := want.Verifier()
	if _, err := io.Copy(verifier, f); err != nil {
		return false, err
	}
	return verifier.Verified(), nil
}

// ArchiveTag turns an archive hash into a short label for logs and
// metadata, in the form "bucket-prefix" (e.g. "742-3d1f57c98497").
// The bucket is the colour hash of the full digest mod 1000, so archives
// with equal content always share a tag.
func ArchiveTag(hash string) string {
	bucket := colorhash.HashString(hash) % 1000
	if bucket < 0 {
		bucket = -bucket
	}
	prefix := hash
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	return fmt.Sprintf("%03d-%s", bucket, prefix)
}
