package sdk

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	accountPath = "/api/v1/auth/account"
	logoutPath  = "/api/v1/auth/logout"
	loginPath   = "/api/v1/auth/login"
)

//go:embed schemas/account.schema.json
var schemaFS embed.FS

const accountSchemaURL = "account.schema.json"

var (
	accountSchemaOnce sync.Once
	accountSchema     *jsonschema.Schema
	accountSchemaErr  error
)

func compiledAccountSchema() (*jsonschema.Schema, error) {
	accountSchemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schemas/" + accountSchemaURL)
		if err != nil {
			accountSchemaErr = fmt.Errorf("read account schema: %w", err)
			return
		}
		parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			accountSchemaErr = fmt.Errorf("parse account schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.DefaultDraft(jsonschema.Draft7)
		if err := compiler.AddResource(accountSchemaURL, parsed); err != nil {
			accountSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		accountSchema, accountSchemaErr = compiler.Compile(accountSchemaURL)
	})
	return accountSchema, accountSchemaErr
}

// FetchAccount resolves the identity behind the current bearer token.
//
// A 2xx reply without a user is an error, as is a payload that fails the
// account schema or names a role outside the known set.
func (c *Client) FetchAccount(ctx context.Context) (*Identity, error) {
	body, err := c.do(ctx, c.authed, http.MethodGet, accountPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return DecodeAccount(body)
}

// Logout tells the server to end the session. Callers treat failure as
// non-fatal.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, c.authed, http.MethodPost, logoutPath, nil, nil)
	return err
}

// DecodeAccount parses an account reply. Both {"user": ...} and the
// {"data": {"user": ...}} envelope are accepted.
func DecodeAccount(body []byte) (*Identity, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	obj, ok := unwrapEnvelope(doc, "user")
	if !ok {
		return nil, ErrNoUser
	}
	if u, present := obj["user"]; !present || u == nil {
		return nil, ErrNoUser
	}

	schema, err := compiledAccountSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(obj); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccount, formatValidationError(err))
	}

	return decodeIdentity(obj["user"])
}

// unwrapEnvelope returns the object holding key, looking one level into "data".
func unwrapEnvelope(doc any, key string) (map[string]any, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, present := obj[key]; present {
		return obj, true
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		if _, present := inner[key]; present {
			return inner, true
		}
	}
	return obj, true
}

func decodeIdentity(raw any) (*Identity, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: user is not an object", ErrInvalidAccount)
	}
	// mongo-style documents carry _id
	if _, has := fields["id"]; !has {
		if id, ok := fields["_id"]; ok {
			fields["id"] = id
		}
	}

	var ident Identity
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &ident,
	})
	if err != nil {
		return nil, fmt.Errorf("build identity decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}

	if ident.ID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidAccount)
	}
	if _, err := ParseRole(string(ident.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return &ident, nil
}

func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	var parts []string
	for _, part := range ve.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	path := "$"
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}
	return fmt.Sprintf("validation failed at '%s': %s", path, ve.Error())
}
