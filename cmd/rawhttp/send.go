package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dqx0.com/go/rawclient/internal/obs"
	"dqx0.com/go/rawclient/rawhttp"
)

type sendOptions struct {
	method  string
	host    string
	port    uint16
	path    string
	tls     bool
	proxy   string
	headers []string
	data    string
	raw     bool
	timeout time.Duration
	stats   bool
}

func newSendCmd(a *app) *cobra.Command {
	o := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one request and print the response",
		Long: `Send builds a request line, Host and Connection: close, appends the given
headers and body, and dispatches it. With --proxy the request goes through an
HTTP CONNECT tunnel; adding --tls runs TLS inside that tunnel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.method, "method", "X", "GET", "Request method")
	f.StringVar(&o.host, "host", "", "Target host name or IP")
	f.Uint16Var(&o.port, "port", 0, "Target port (default 80, or 443 with --tls)")
	f.StringVar(&o.path, "path", "/", "Request target")
	f.BoolVar(&o.tls, "tls", false, "Use TLS")
	f.StringVar(&o.proxy, "proxy", "", "Proxy as [user:password@]host:port (overrides config)")
	f.StringArrayVarP(&o.headers, "header", "H", nil, "Header as 'Key: Value', repeatable")
	f.StringVarP(&o.data, "data", "d", "", "Request body; sets Content-Length")
	f.BoolVar(&o.raw, "raw", false, "Print the response bytes unparsed")
	f.DurationVar(&o.timeout, "timeout", 0, "Deadline for the whole exchange (overrides config)")
	f.BoolVar(&o.stats, "stats", false, "Print dispatch counters to stderr")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func (a *app) send(cmd *cobra.Command, o *sendOptions) error {
	method, err := rawhttp.ParseMethod(o.method)
	if err != nil {
		return err
	}
	port := o.port
	if port == 0 {
		port = 80
		if o.tls {
			port = 443
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := a.cfg.Timeout
	if o.timeout > 0 {
		timeout = o.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := rawhttp.NewRequestContext(ctx, rawhttp.RequestOptions{}, method, o.host, port, o.path)
	if err != nil {
		return err
	}
	for _, h := range a.cfg.Headers {
		req.SetHeader(h.Key, h.Value)
	}
	for _, h := range o.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("malformed header %q, want 'Key: Value'", h)
		}
		req.SetHeader(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	if cmd.Flags().Changed("data") {
		req.SetHeader("Content-Length", strconv.Itoa(len(o.data)))
	}
	req.SetBody(o.data)

	proxyDesc := a.cfg.Proxy
	if o.proxy != "" {
		proxyDesc = o.proxy
	}
	var proxy *rawhttp.Proxy
	if proxyDesc != "" {
		proxy, err = rawhttp.ParseProxyContext(ctx, nil, proxyDesc)
		if err != nil {
			return err
		}
	}

	j, err := a.openJournal()
	if err != nil {
		return err
	}
	meter := obs.NewCountingMeter()
	tr := &rawhttp.Transport{
		MaxTunnelHeadBytes: a.cfg.MaxTunnelHeadBytes,
		Logger:             a.logger,
		Meter:              meter,
	}
	if j != nil {
		defer j.Close()
		tr.Recorder = j
	}

	resp, err := dispatch(ctx, tr, req, proxy, o.tls)
	if o.stats {
		printStats(cmd.ErrOrStderr(), meter)
	}
	if err != nil {
		var te *rawhttp.TunnelError
		if errors.As(err, &te) {
			return fmt.Errorf("proxy said %q: %w", te.StatusLine, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if o.raw {
		_, err = out.Write(resp.Bytes())
		return err
	}
	printResponse(out, resp)
	return nil
}

func dispatch(ctx context.Context, d rawhttp.Dispatcher, req *rawhttp.Request, p *rawhttp.Proxy, useTLS bool) (*rawhttp.Response, error) {
	switch {
	case p != nil && useTLS:
		return d.DoProxyTLS(ctx, req, p)
	case p != nil:
		return d.DoProxy(ctx, req, p)
	case useTLS:
		return d.DoTLS(ctx, req)
	default:
		return d.Do(ctx, req)
	}
}

func printResponse(w io.Writer, resp *rawhttp.Response) {
	fmt.Fprintf(w, "status: %d\n", resp.ReadStatusCode())
	headers := resp.ReadHeaders()
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, headers[k])
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, resp.ReadBodyString())
}

func printStats(w io.Writer, m *obs.CountingMeter) {
	counters := m.Counters()
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s %g\n", k, counters[k])
	}
}
