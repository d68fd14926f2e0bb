// Package compress provides the compression codecs a session may apply
// to request and reply object payloads when the connection's compress
// flag bit is negotiated on.
//
// Three real algorithms are available, plus a no-op passthrough:
//
//   - Zstd: best compression ratio, moderate speed. Suited to large
//     batched table uploads over constrained links.
//   - S2: fastest, moderate ratio.
//   - LZ4: fast block compression with wide cross-language support.
//   - None: passthrough; a session configured with None leaves the
//     compress flag bit off.
//
// All built-in codecs are stateless values; encoders and decoders with
// internal state (zstd, lz4) are drawn from sync.Pool behind the scenes
// so repeated payloads do not re-allocate.
package compress
