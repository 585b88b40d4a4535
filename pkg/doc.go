// Package dirhash computes message digests over file trees.
//
// Every regular file, device and symlink below an input path gets a digest,
// printed as "<hex>  <path>". In squash mode the per entry digests are folded
// into a single aggregate for the whole tree instead.
//
// # Core API
//
// A Walker is built from an immutable Options value and writes to any io.Writer:
//
//	opts := dirhash.DefaultOptions()
//	opts.Squash = true
//	w, err := dirhash.NewWalker(opts, os.Stdout, nil)
//	if err != nil {
//		return err
//	}
//	err = w.Run([]string{"/path/to/dir"})
//
// HashPath hashes a single input and returns a Result with its statistics and,
// when squashing, the squash digest.
//
// # Squash versions
//
// Version 1 is independent of traversal order. Version 2 chains every entry
// into a rolling sha1 buffer and therefore depends on it; use Options.Sort for
// reproducible version 2 results. Digests of different versions are never
// comparable, which is why squash lines carry a "[squash][vN]" tag.
//
// # Configuration
//
// Options can be loaded from an ini file with LoadConfig and adjusted with
// "key:value" overrides:
//
//	cfg, err := dirhash.LoadConfig("dirhash.ini")
//	err = cfg.ApplyOverrides([]string{"algo:sha1", "version:2"})
//	opts, err := cfg.Options()
//
// Verbose and debug output goes through a Logger:
//
//	log := dirhash.NewLogger(os.Stderr, 2, "walk,resolve")
package dirhash
