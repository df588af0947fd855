package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/voici5986/lumina-layout/internal/logx"
	"github.com/voici5986/lumina-layout/internal/parse"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	openapiDoc  *openapi3.T
	openapiJSON []byte
)

// errBadRequest marks request bodies that fail decoding or validation.
var errBadRequest = errors.New("invalid request")

func init() {
	doc, err := openapi3.NewLoader().LoadFromData(openapiYAML)
	if err != nil {
		panic(err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		panic(err)
	}
	b, err := doc.MarshalJSON()
	if err != nil {
		panic(err)
	}
	openapiDoc = doc
	openapiJSON = b
}

// OpenAPIHandler serves the API description.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(openapiJSON); err != nil {
			logx.Log.Error().Err(err).Msg("write openapi")
		}
	}
}

// decodeParseRequest validates body against the ParseRequest schema and
// decodes it.
func decodeParseRequest(body []byte) (parse.Request, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return parse.Request{}, fmt.Errorf("%w: malformed JSON: %v", errBadRequest, err)
	}
	schema := openapiDoc.Components.Schemas["ParseRequest"].Value
	if err := schema.VisitJSON(raw); err != nil {
		return parse.Request{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	var req parse.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return parse.Request{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}
