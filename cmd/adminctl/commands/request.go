package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRequestCmd() *cobra.Command {
	var (
		data    string
		headers []string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send an authenticated request to the API and print the response",
		Example: `  adminctl request GET /hierarchy/
  adminctl request POST /crm/customers/ --data '{"name":"Acme"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			path := args[1]

			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return pkgerrors.New("--data must be valid JSON")
				}
				body = json.RawMessage(data)
			}

			opts := []client.RequestOption{}
			for _, h := range headers {
				k, v, ok := strings.Cut(h, ":")
				if !ok {
					return pkgerrors.Errorf("header %q must look like Key: value", h)
				}
				opts = append(opts, client.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
			}
			if timeout > 0 {
				opts = append(opts, client.WithTimeout(timeout))
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			resp, err := s.client.Request(cmd.Context(), method, path, body, opts...)
			if errors.Is(err, errors.ErrAuthenticationRequired) {
				return pkgerrors.New("session expired, run adminctl login")
			}
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s -> %s\n", method, path, resp.Status)
			if err := writeBody(cmd.OutOrStdout(), resp.Body); err != nil {
				return err
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return pkgerrors.Errorf("request failed with status %d", resp.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header, e.g. -H 'X-Tenant: north'")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound the whole call, including any refresh")
	return cmd
}

// writeBody pretty prints JSON bodies and copies anything else through
func writeBody(w io.Writer, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return pkgerrors.Wrap(err, "read response")
	}
	if len(raw) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		raw = pretty.Bytes()
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if !bytes.HasSuffix(raw, []byte("\n")) {
		_, err = fmt.Fprintln(w)
	}
	return err
}
