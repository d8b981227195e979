package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"apsmcp/internal/apiclient"
	"apsmcp/internal/validation"
	"apsmcp/pkg/logging"
)

var (
	apiQuery   []string
	apiHeaders []string
	apiData    string
)

var apiCmd = &cobra.Command{
	Use:   "api [METHOD] PATH",
	Short: "Send a request to the API host and print the JSON response",
	Long: `Sends one request with the same token selection as the MCP tools: the
user session when one is valid, the application token otherwise.

Examples:
  apsmcp api /project/v1/hubs
  apsmcp api /data/v1/projects/b.123/folders/urn:adsk.wipprod:fs.folder:co.abc/contents -q 'page[limit]=20'
  apsmcp api POST /data/v1/projects/b.123/folders -d @folder.json -H 'Content-Type: application/vnd.api+json'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	method, path := http.MethodGet, args[0]
	if len(args) == 2 {
		method, path = strings.ToUpper(args[0]), args[1]
	}

	if err := validation.APIPath(path); err != nil {
		return err
	}

	query, err := parseQuery(apiQuery)
	if err != nil {
		return err
	}
	headers, err := parseHeaders(apiHeaders)
	if err != nil {
		return err
	}
	body, err := parseBody(apiData)
	if err != nil {
		return err
	}

	services, err := loadServices()
	if err != nil {
		return err
	}
	if err := services.API.CheckTarget(path); err != nil {
		return err
	}

	ctx := cmd.Context()
	token, mode, err := services.Tokens.Token(ctx)
	if err != nil {
		return err
	}
	logging.Debug("CLI", "Using %s token", mode)

	res, err := services.API.Do(ctx, apiclient.Request{
		Method:  method,
		Path:    path,
		Query:   query,
		Body:    body,
		Headers: headers,
	}, token)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok {
			out, _ := json.MarshalIndent(apiclient.Diagnose(apiErr), "", "  ")
			fmt.Fprintln(cmd.ErrOrStderr(), string(out))
		}
		return err
	}

	out, err := json.MarshalIndent(res.Value(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// parseQuery turns key=value pairs into query parameters. Repeated keys
// become lists.
func parseQuery(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	query := map[string]any{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query %q, expected key=value", p)
		}
		switch existing := query[key].(type) {
		case nil:
			query[key] = value
		case string:
			query[key] = []string{existing, value}
		case []string:
			query[key] = append(existing, value)
		}
	}
	return query, nil
}

func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, h := range values {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parseBody accepts inline JSON or @file.
func parseBody(data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	raw := []byte(data)
	if strings.HasPrefix(data, "@") {
		var err error
		raw, err = os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, err
		}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringArrayVarP(&apiQuery, "query", "q", nil, "Query parameter key=value (repeatable)")
	apiCmd.Flags().StringArrayVarP(&apiHeaders, "header", "H", nil, "Request header 'Name: value' (repeatable)")
	apiCmd.Flags().StringVarP(&apiData, "data", "d", "", "JSON body, or @file to read it from a file")
}
