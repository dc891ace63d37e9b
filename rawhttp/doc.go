// Package rawhttp is a minimal HTTP/1.1 client core that works on the wire
// form directly: it builds byte-exact requests, sends exactly one per
// connection, and keeps the reply as raw bytes that are parsed on demand.
//
// Highlights
//   - Request: request line, Host and "Connection: close" are written at
//     construction; headers and body are appended verbatim. The target is
//     resolved once, up front.
//   - Transport: plain TCP, TLS (SNI and verification against the request
//     host), CONNECT tunnel through an HTTP proxy with optional Basic
//     Proxy-Authorization, and TLS inside such a tunnel.
//   - Response: status code, header map and body extracted from the raw
//     bytes; accessors never fail.
//   - Observability: plug-in Logger, Meter and Recorder.
//
// The reply is read until the peer closes the connection; Content-Length
// and chunked framing are not interpreted. There is no keep-alive, retry,
// redirect or cookie handling.
//
// Quick start:
//
//	r, err := rawhttp.NewRequest(rawhttp.MethodGet, "example.com", 80, "/")
//	if err != nil { log.Fatal(err) }
//	r.SetHeader("Accept", "*/*")
//	r.SetBody("")
//	res, err := r.Perform(ctx)
//	if err != nil { log.Fatal(err) }
//	fmt.Println(res.ReadStatusCode(), res.ReadBodyString())
package rawhttp
