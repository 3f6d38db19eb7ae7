package refdata

import (
	"context"
	"fmt"

	apperrors "blpcli/internal/errors"
)

// ReferenceData performs a reference-data pull. The same call serves
// bulk fields (supply-chain tables) and scalar fields (per-relationship
// amounts); callers pick values off the returned SecurityData.
func (c *Client) ReferenceData(ctx context.Context, req ReferenceRequest) ([]SecurityData, error) {
	if len(req.Securities) == 0 {
		return nil, apperrors.BadRequest("no securities given")
	}
	if len(req.Fields) == 0 {
		return nil, apperrors.BadRequest("no fields given")
	}

	wire := ReferenceRequest{
		Securities: make([]string, 0, len(req.Securities)),
		Fields:     req.Fields,
		Overrides:  req.Overrides,
	}
	for _, s := range req.Securities {
		wire.Securities = append(wire.Securities, normalizeTicker(s))
	}

	c.logger.Debug("reference data request",
		"securities", wire.Securities,
		"fields", req.Fields,
		"overrides", len(req.Overrides),
	)

	var resp referenceResponse
	if err := c.post(ctx, "/refdata/reference", wire, &resp); err != nil {
		return nil, fmt.Errorf("reference data request: %w", err)
	}

	return resp.SecurityData, nil
}
