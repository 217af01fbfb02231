package echoapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
)

// SuccessResponse is the body of successful mutations.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(ctx echo.Context, code int, message string, data interface{}) error {
	return ctx.JSON(code, SuccessResponse{Success: true, Message: message, Data: data})
}

// viewRenderer serves read-only views from the view cache, rendering them on a miss.
type viewRenderer struct {
	cache  core.ViewCache
	logger core.Logger
}

func (v *viewRenderer) render(ctx echo.Context, key string, load func() (interface{}, error)) error {
	data, err := v.view(ctx.Request().Context(), key, load)
	if err != nil {
		return err
	}
	return ctx.JSONBlob(http.StatusOK, data)
}

// fetch decodes the view key in dst.
func (v *viewRenderer) fetch(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	data, err := v.view(ctx, key, load)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(data, dst), "decoding view %s", key)
}

// view returns the cached JSON of key, rendering and caching it on a miss.
func (v *viewRenderer) view(ctx context.Context, key string, load func() (interface{}, error)) ([]byte, error) {
	if v.cache != nil {
		data, ok, err := v.cache.Get(ctx, key)
		if err != nil {
			v.logger.Warn("reading cached view", err, map[string]interface{}{"view": key})
		} else if ok {
			return data, nil
		}
	}

	obj, err := load()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering view %s", key)
	}

	if v.cache != nil {
		if err = v.cache.Set(ctx, key, data); err != nil {
			v.logger.Warn("caching view", err, map[string]interface{}{"view": key})
		}
	}
	return data, nil
}
