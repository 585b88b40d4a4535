package dirhash

import (
	"strings"
)

// Hash algorithm names accepted by GetHashAlgorithm
const (
	HashMD5        = "md5"
	HashSHA1       = "sha1"
	HashSHA224     = "sha224"
	HashSHA256     = "sha256"
	HashSHA384     = "sha384"
	HashSHA512     = "sha512"
	HashSHA512_224 = "sha512_224"
	HashSHA512_256 = "sha512_256"
	HashSHA3_224   = "sha3_224"
	HashSHA3_256   = "sha3_256"
	HashSHA3_384   = "sha3_384"
	HashSHA3_512   = "sha3_512"
	HashBLAKE2b256 = "blake2b_256"
	HashBLAKE2b512 = "blake2b_512"
)

// DefaultHashAlgorithm is used when neither the config file nor the command line names one
const DefaultHashAlgorithm = HashSHA256

// Squash constants
const (
	SquashLabel          = "squash"
	SquashVersion1       = 1 // order-independent, md5 per update, sorted
	SquashVersion2       = 2 // order-dependent, rolling sha1
	DefaultSquashVersion = SquashVersion1
)

// Streaming constants
const (
	DefaultHashBuffer = 64 * 1024 // bytes read per chunk while hashing content
	MinHexSumLength   = 32        // shortest accepted --hash_verify value (md5)
	maxSymlinkHops    = 40        // same limit as the kernel's MAXSYMLINKS
	maxIovecs         = 1024      // IOV_MAX on linux
)

// Debug flag names understood by Logger.IsDebugEnabled
const (
	DebugWalk    = "walk"
	DebugHash    = "hash"
	DebugSquash  = "squash"
	DebugResolve = "resolve"
)

// HashSizeFromName returns the digest size in bytes for an algorithm name,
// or 0 if the name is unknown
func HashSizeFromName(name string) int {
	algorithm, err := GetHashAlgorithm(strings.ToLower(name))
	if err != nil {
		return 0
	}
	return algorithm.Size
}
