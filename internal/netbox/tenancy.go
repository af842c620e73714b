package netbox

import (
	"context"
	"net/url"
)

type TenancyClient struct {
	c *Client
}

func (t *TenancyClient) Tenants(ctx context.Context, filter url.Values) ([]Tenant, error) {
	return list[Tenant](ctx, t.c, "/api/tenancy/tenants/", filter)
}

func (t *TenancyClient) CreateTenant(ctx context.Context, params TenantParams) (*Tenant, error) {
	return create[Tenant](ctx, t.c, "/api/tenancy/tenants/", params)
}
