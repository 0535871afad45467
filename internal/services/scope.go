package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
)

var errNoEducator = errors.New("no educator in request context")

func educatorFrom(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.EducatorID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized(errNoEducator)
	}
	return id, nil
}
