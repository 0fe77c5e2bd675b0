package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// formBinder is implemented by request types that can also be filled from
// form-encoded fields.
type formBinder interface {
	bindForm(v url.Values) error
}

// bind fills dst from a JSON body, a urlencoded or multipart form, or the
// query string, then runs the struct's validate tags. Form bodies are read
// for every method, DELETE included.
func bind(r *http.Request, dst formBinder) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "application/json":
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("malformed json body: %w", err)
		}
		if err := dst.bindForm(r.URL.Query()); err != nil {
			return err
		}

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return fmt.Errorf("malformed form body: %w", err)
		}
		if err := dst.bindForm(mergeValues(r.MultipartForm.Value, r.URL.Query())); err != nil {
			return err
		}

	default:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		form, err := url.ParseQuery(string(bytes.TrimSpace(body)))
		if err != nil {
			return fmt.Errorf("malformed form body: %w", err)
		}
		if err := dst.bindForm(mergeValues(form, r.URL.Query())); err != nil {
			return err
		}
	}

	return validate.Struct(dst)
}

// mergeValues returns primary with any keys missing from it taken from
// fallback.
func mergeValues(primary, fallback url.Values) url.Values {
	out := url.Values{}
	for k, v := range fallback {
		out[k] = v
	}
	for k, v := range primary {
		out[k] = v
	}
	return out
}

// setString assigns v[key] to dst unless dst already holds a value from
// the JSON body.
func setString(dst *flexString, v url.Values, key string) {
	if *dst != "" {
		return
	}
	if vals, ok := v[key]; ok && len(vals) > 0 {
		*dst = flexString(vals[0])
	}
}

func setID(dst *flexID, v url.Values, key string) error {
	vals, ok := v[key]
	if !ok || len(vals) == 0 || *dst != 0 {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(vals[0]), 10, 64)
	if err != nil {
		return fmt.Errorf("%s must be an integer", key)
	}
	*dst = flexID(n)
	return nil
}

// flexString accepts a JSON string or a bare JSON number, keeping the
// number's literal text ("29.90" stays "29.90").
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// flexID accepts a JSON integer or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("expected integer id, got %s", b)
	}
	*f = flexID(n)
	return nil
}

// validationMessage renders the first failing field of a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Sprintf("invalid request: %s is required", fe.Field())
		}
		return fmt.Sprintf("invalid request: %s failed %s", fe.Field(), fe.Tag())
	}
	return "invalid request: " + err.Error()
}
