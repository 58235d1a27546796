package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/logging"
)

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// statuses map to a typed API error carrying the collection name; a nil
// target discards the body after the status check.
func DecodeResponse(resp *http.Response, collection string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.APIError{
			Collection: collection,
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   resp.Request.URL.String(),
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
