// MCP transport handler using the official MCP Go SDK.
// Exposes order status, tracking and returns operations as MCP tools for
// support agents and assistants.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront-tracker/internal/model"
	"storefront-tracker/internal/reconcile"
)

// === MCP Tool Input Types ===

// ResolveOrderStatusInput is the input schema for resolve_order_status.
type ResolveOrderStatusInput struct {
	OrderID string `json:"order_id" jsonschema:"store order number"`
	Key     string `json:"key,omitempty" jsonschema:"order key from the payment return URL"`
}

// ResolveCancellationInput is the input schema for resolve_cancellation.
type ResolveCancellationInput struct {
	OrderID string `json:"order_id" jsonschema:"store order number"`
	Reason  string `json:"reason,omitempty" jsonschema:"cancellation reason shown to the customer"`
}

// TrackShipmentInput is the input schema for track_shipment.
type TrackShipmentInput struct {
	Identifier string `json:"identifier" jsonschema:"airway bill number or store order reference"`
}

// CheckReturnStatusInput is the input schema for check_return_status.
type CheckReturnStatusInput struct {
	TrackingNumber string `json:"tracking_number" jsonschema:"carrier airway bill number"`
}

// SubmitReturnRequestInput is the input schema for submit_return_request.
type SubmitReturnRequestInput struct {
	TrackingNumber string   `json:"tracking_number" jsonschema:"carrier airway bill number of the delivered shipment"`
	OrderID        string   `json:"order_id,omitempty" jsonschema:"store order number, taken from the carrier record when omitted"`
	Type           string   `json:"type" jsonschema:"Return or Replacement"`
	Reason         string   `json:"reason" jsonschema:"why the item is being returned"`
	Comments       string   `json:"comments,omitempty" jsonschema:"free-text details, at most 2000 characters"`
	Images         []string `json:"images,omitempty" jsonschema:"up to 5 image data URLs (jpeg, png, webp or gif, 5 MiB each)"`
	CustomerName   string   `json:"customer_name,omitempty"`
	CustomerEmail  string   `json:"customer_email,omitempty"`
	CustomerPhone  string   `json:"customer_phone,omitempty"`
}

func (in SubmitReturnRequestInput) request() *model.ReturnRequest {
	return &model.ReturnRequest{
		TrackingNumber: in.TrackingNumber,
		OrderID:        in.OrderID,
		Type:           model.ReturnType(in.Type),
		Reason:         in.Reason,
		Comments:       in.Comments,
		Images:         in.Images,
		CustomerName:   in.CustomerName,
		CustomerEmail:  in.CustomerEmail,
		CustomerPhone:  in.CustomerPhone,
	}
}

// NewMCPServer creates an MCP server with the storefront tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront-tracker",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront order status and shipment tracking. " +
				"Use these tools to check payment outcomes, follow shipments, and file returns for delivered orders.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_order_status",
		Description: "Classify an order after a payment redirect as success, failed or unknown.",
	}, h.mcpResolveOrderStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_cancellation",
		Description: "Build the cancellation view for an order whose payment the customer abandoned.",
	}, h.mcpResolveCancellation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "track_shipment",
		Description: "Get shipment progress for a tracking number or order reference.",
	}, h.mcpTrackShipment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_return_status",
		Description: "List return and replacement requests already filed for a tracking number.",
	}, h.mcpCheckReturnStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_return_request",
		Description: "File a return or replacement request. Only delivered shipments are eligible.",
	}, h.mcpSubmitReturnRequest)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpResolveOrderStatus(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ResolveOrderStatusInput,
) (*mcp.CallToolResult, *model.ResolvedStatus, error) {
	status, err := h.resolver.Resolve(ctx, reconcile.ResolveRequest{
		OrderID:  input.OrderID,
		OrderKey: input.Key,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, status, nil
}

func (h *Handler) mcpResolveCancellation(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ResolveCancellationInput,
) (*mcp.CallToolResult, *model.ResolvedStatus, error) {
	status, err := h.resolver.ResolveCancellation(ctx, reconcile.CancelRequest{
		OrderID: input.OrderID,
		Reason:  input.Reason,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, status, nil
}

func (h *Handler) mcpTrackShipment(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TrackShipmentInput,
) (*mcp.CallToolResult, *model.Projection, error) {
	proj, err := h.projector.Project(ctx, input.Identifier)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, proj, nil
}

func (h *Handler) mcpCheckReturnStatus(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CheckReturnStatusInput,
) (*mcp.CallToolResult, *model.ReturnStatus, error) {
	status, err := h.desk.Status(ctx, input.TrackingNumber)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, status, nil
}

func (h *Handler) mcpSubmitReturnRequest(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SubmitReturnRequestInput,
) (*mcp.CallToolResult, *model.ReturnReceipt, error) {
	receipt, err := h.desk.Submit(ctx, input.request())
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, receipt, nil
}

// mcpError converts service errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
