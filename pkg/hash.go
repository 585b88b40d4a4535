package dirhash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	stdsha256 "crypto/sha256"

	"github.com/minio/blake2b-simd"
	sha256 "github.com/minio/sha256-simd"
	"golang.org/x/crypto/sha3"
)

// ErrUnsupportedAlgorithm is returned for hash algorithm names not in the registry
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// ErrInvalidVerify is returned for a malformed --hash_verify value
var ErrInvalidVerify = errors.New("invalid verify string")

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	Size    int
	NewFunc func() hash.Hash
}

// hashAlgorithms is kept in the order AvailableAlgorithms reports
var hashAlgorithms = []HashAlgorithm{
	{Name: HashMD5, Size: md5.Size, NewFunc: md5.New},
	{Name: HashSHA1, Size: sha1.Size, NewFunc: sha1.New},
	{Name: HashSHA224, Size: stdsha256.Size224, NewFunc: stdsha256.New224},
	{Name: HashSHA256, Size: sha256.Size, NewFunc: sha256.New},
	{Name: HashSHA384, Size: sha512.Size384, NewFunc: sha512.New384},
	{Name: HashSHA512, Size: sha512.Size, NewFunc: sha512.New},
	{Name: HashSHA512_224, Size: sha512.Size224, NewFunc: sha512.New512_224},
	{Name: HashSHA512_256, Size: sha512.Size256, NewFunc: sha512.New512_256},
	{Name: HashSHA3_224, Size: 28, NewFunc: sha3.New224},
	{Name: HashSHA3_256, Size: 32, NewFunc: sha3.New256},
	{Name: HashSHA3_384, Size: 48, NewFunc: sha3.New384},
	{Name: HashSHA3_512, Size: 64, NewFunc: sha3.New512},
	{Name: HashBLAKE2b256, Size: 32, NewFunc: blake2b.New256},
	{Name: HashBLAKE2b512, Size: 64, NewFunc: blake2b.New512},
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	lower := strings.ToLower(name)
	for i := range hashAlgorithms {
		if hashAlgorithms[i].Name == lower {
			algorithm := hashAlgorithms[i]
			return &algorithm, nil
		}
	}
	return nil, fmt.Errorf("%w %s (available: %s)", ErrUnsupportedAlgorithm, name,
		strings.Join(AvailableAlgorithms(), " "))
}

// AvailableAlgorithms lists every algorithm name GetHashAlgorithm accepts
func AvailableAlgorithms() []string {
	names := make([]string, 0, len(hashAlgorithms))
	for _, algorithm := range hashAlgorithms {
		names = append(names, algorithm.Name)
	}
	return names
}

// HashReader streams r through the algorithm using a buffer of bufferSize bytes
// and returns the digest together with the number of bytes consumed
func HashReader(r io.Reader, algorithm *HashAlgorithm, bufferSize int) ([]byte, uint64, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultHashBuffer
	}

	hasher := algorithm.NewFunc()
	buffer := make([]byte, bufferSize)
	var written uint64

	for {
		n, err := r.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			written += uint64(n)
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, written, err
		}
	}

	return hasher.Sum(nil), written, nil
}

// HashFile calculates the hash of a file's contents using the specified algorithm
func HashFile(filePath string, algorithm *HashAlgorithm, bufferSize int) ([]byte, uint64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	sum, written, err := HashReader(file, algorithm, bufferSize)
	if err != nil {
		return nil, written, fmt.Errorf("failed to hash file %s: %w", filePath, err)
	}
	return sum, written, nil
}

// HashBytes calculates the hash of a byte buffer
func HashBytes(data []byte, algorithm *HashAlgorithm) ([]byte, uint64) {
	hasher := algorithm.NewFunc()
	hasher.Write(data)
	return hasher.Sum(nil), uint64(len(data))
}

// HashString calculates the hash of a string
func HashString(data string, algorithm *HashAlgorithm) ([]byte, uint64) {
	return HashBytes([]byte(data), algorithm)
}

// Digest hashes r with the algorithm registered under name
func Digest(r io.Reader, name string) ([]byte, uint64, error) {
	algorithm, err := GetHashAlgorithm(name)
	if err != nil {
		return nil, 0, err
	}
	return HashReader(r, algorithm, DefaultHashBuffer)
}

// HexSum returns the lowercase hex form of a digest, two characters per byte
func HexSum(sum []byte) string {
	return hex.EncodeToString(sum)
}

// ValidHexSum checks a digest string supplied for verification.
// An optional "0x" prefix is accepted; at least MinHexSumLength hex digits are required.
// The returned string is the prefix-stripped, lower-cased form.
func ValidHexSum(input string) (string, bool) {
	s := strings.TrimPrefix(input, "0x")
	if len(s) < MinHexSumLength {
		return input, false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return input, false
		}
	}
	return strings.ToLower(s), true
}
