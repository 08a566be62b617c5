package api

import (
	digest "github.com/opencontainers/go-digest"

	"github.com/samcharles93/tmf/internal/dump"
	"github.com/samcharles93/tmf/pkg/tmf"
)

type AssembleResponse struct {
	ID     string        `json:"id"`
	Object string        `json:"object"`
	Digest digest.Digest `json:"digest"`
	Size   int           `json:"size"`
	Top    tmf.Offset    `json:"top"`
}

type DeleteContainerResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type InspectResponse struct {
	Object   string         `json:"object"`
	Digest   digest.Digest  `json:"digest"`
	Summary  dump.Summary   `json:"summary"`
	Document *dump.Document `json:"document"`
}
