package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/helixml/linedit/infrastructure/api/middleware"
	"github.com/helixml/linedit/infrastructure/api/v1/dto"
)

// maxBodyBytes caps request documents.
const maxBodyBytes = 8 << 20

// decodeAttributes reads a JSON:API request document and returns its
// attributes. An empty body yields zero attributes when optional is set.
func decodeAttributes[A any](w http.ResponseWriter, req *http.Request, optional bool) (A, error) {
	var body dto.Request[A]
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return body.Data.Attributes, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return body.Data.Attributes, middleware.NewAPIError(http.StatusRequestEntityTooLarge, "request body too large", err)
		}
		return body.Data.Attributes, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err)
	}
	return body.Data.Attributes, nil
}
