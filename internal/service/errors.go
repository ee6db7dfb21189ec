package service

import (
	"errors"

	"github.com/gcclean/trash-service/internal/model"
)

var (
	ErrNotFound     = model.ErrNotFound
	ErrInvalidInput = errors.New("invalid input")
)
