package api

import (
	digest "github.com/opencontainers/go-digest"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// Container is an assembled container held by the server.
type Container struct {
	ID        string        `json:"id"`
	Digest    digest.Digest `json:"digest"`
	Size      int           `json:"size"`
	Top       tmf.Offset    `json:"top"`
	CreatedAt int64         `json:"created_at"`
	Data      []byte        `json:"-"`
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
