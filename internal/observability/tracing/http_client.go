package tracing

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// WrapHTTPClient returns a copy of client whose requests open a client span
// and carry the trace context downstream. Span names never include the query.
func WrapHTTPClient(client *http.Client, opts ...otelhttp.Option) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	opts = append([]otelhttp.Option{otelhttp.WithSpanNameFormatter(clientSpanName)}, opts...)
	wrapped := *client
	wrapped.Transport = otelhttp.NewTransport(base, opts...)
	return &wrapped
}

func clientSpanName(_ string, req *http.Request) string {
	return "HTTP " + req.Method + " " + req.URL.Host
}
