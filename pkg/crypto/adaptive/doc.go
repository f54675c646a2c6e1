// Package adaptive seals data with an AEAD cipher chosen for the host.
//
// AES-256-GCM is used where the CPU accelerates AES, ChaCha20-Poly1305
// elsewhere. Sealed blobs carry a small header naming the algorithm, so a
// blob sealed on one machine opens on any other holding the same key.
//
// Envelope layout:
//
//	magic "TM" | version 1 | algorithm | nonce | ciphertext+tag
//
// Usage:
//
//	s, err := adaptive.New(key)
//	blob, err := s.Seal(png, []byte("export/ths-.../home"))
//	png, err = s.Open(blob, []byte("export/ths-.../home"))
package adaptive
