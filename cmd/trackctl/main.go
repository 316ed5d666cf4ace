// trackctl is a CLI tool for exercising a running storefront tracker.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	trackctl status -server URL -order ID [-key KEY]
//	trackctl cancel -server URL -order ID [-reason TEXT]
//	trackctl track -server URL -id AWB|ORDER
//	trackctl returns -server URL -tracking AWB
//	trackctl submit-return -server URL -tracking AWB -type Return|Replacement -reason TEXT [-image FILE]...
//
// Examples:
//
//	OUTCOME=$(trackctl status -order 1001 -q)
//	trackctl track -id 5012345678
//	trackctl submit-return -tracking 5012345678 -type Replacement -reason "Damaged" -image box.jpg
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"storefront-tracker/internal/flight"
)

var client = &http.Client{Timeout: 60 * time.Second}

// Global flags (apply to all commands)
var (
	serverURL string
	quiet     bool
	noColor   bool
	verbose   bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorCyan, colorGray, colorBold = "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "status":
		runStatus(args)
	case "cancel":
		runCancel(args)
	case "track":
		runTrack(args)
	case "returns":
		runReturns(args)
	case "submit-return":
		runSubmitReturn(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `trackctl - storefront order status and tracking tool

Usage:
  trackctl <command> [options]

Commands:
  status         Resolve an order's payment outcome
  cancel         Show the cancellation view for an order
  track          Show shipment progress for a tracking number or order
  returns        List return/replacement requests for a tracking number
  submit-return  File a return or replacement for a delivered shipment

Examples:
  # Capture the outcome only
  OUTCOME=$(trackctl status -order 1001 -q)

  # Follow a shipment
  trackctl track -id 5012345678

  # File a replacement with a photo
  trackctl submit-return -tracking 5012345678 -type Replacement -reason "Damaged" -image box.jpg

Run 'trackctl <command> -h' for command-specific options.
`)
}

// newFlagSet registers the flags every command shares.
func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&serverURL, "server", "http://localhost:8080", "Storefront tracker base URL")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the key result")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trackctl %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func parse(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// STATUS / CANCEL COMMANDS
// =============================================================================

func runStatus(args []string) {
	fs := newFlagSet("status", "status -order ID [options]")
	var orderID, key string
	fs.StringVar(&orderID, "order", "", "Order ID (required)")
	fs.StringVar(&key, "key", "", "Order key from the payment return URL")
	parse(fs, args)

	if orderID == "" {
		fs.Usage()
		os.Exit(1)
	}

	path := "/orders/" + url.PathEscape(orderID) + "/status"
	if key != "" {
		path += "?key=" + url.QueryEscape(key)
	}

	resp, err := doRequest("GET", path, flight.ViewOrderStatus, nil)
	if err != nil {
		fatal("Failed to resolve order: %v", err)
	}
	printResolved(resp)
}

func runCancel(args []string) {
	fs := newFlagSet("cancel", "cancel -order ID [options]")
	var orderID, reason string
	fs.StringVar(&orderID, "order", "", "Order ID (required)")
	fs.StringVar(&reason, "reason", "", "Cancellation reason to display")
	parse(fs, args)

	if orderID == "" {
		fs.Usage()
		os.Exit(1)
	}

	path := "/orders/" + url.PathEscape(orderID) + "/cancellation"
	if reason != "" {
		path += "?reason=" + url.QueryEscape(reason)
	}

	resp, err := doRequest("GET", path, flight.ViewCancellation, nil)
	if err != nil {
		fatal("Failed to resolve cancellation: %v", err)
	}
	printResolved(resp)
}

func printResolved(resp map[string]interface{}) {
	outcome, _ := resp["outcome"].(string)
	if quiet {
		fmt.Println(outcome)
		return
	}

	message, _ := resp["message"].(string)
	switch outcome {
	case "success":
		printSuccess("%s", message)
	case "failed":
		printError("%s", message)
	default:
		printWarning("%s", message)
	}
	fmt.Printf("  Outcome: %s%s%s\n", colorCyan, outcome, colorReset)
	if reason, _ := resp["reason_code"].(string); reason != "" {
		fmt.Printf("  Reason: %s\n", reason)
	}

	order, ok := resp["order"].(map[string]interface{})
	if !ok {
		return
	}
	fmt.Printf("  Payment: %s\n", order["payment_method_label"])
	fmt.Printf("  Total: %s%s%s\n", colorGreen, order["total"], colorReset)
	if items, ok := order["line_items"].([]interface{}); ok {
		for _, it := range items {
			if m, ok := it.(map[string]interface{}); ok {
				fmt.Printf("    - %v x %v (%v)\n", m["quantity"], m["name"], m["total"])
			}
		}
	}
}

// =============================================================================
// TRACK COMMAND
// =============================================================================

func runTrack(args []string) {
	fs := newFlagSet("track", "track -id AWB|ORDER [options]")
	var identifier string
	fs.StringVar(&identifier, "id", "", "Tracking number or order reference (required)")
	parse(fs, args)

	if identifier == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("GET", "/tracking/"+url.PathEscape(identifier), flight.ViewTracking, nil)
	if err != nil {
		fatal("Failed to track shipment: %v", err)
	}

	state, _ := resp["state"].(string)
	if quiet {
		fmt.Println(state)
		return
	}

	if msg, _ := resp["message"].(string); msg != "" {
		printWarning("%s", msg)
	}
	fmt.Printf("  State: %s%s%s\n", colorCyan, state, colorReset)

	progress, hasProgress := resp["progress_index"].(float64)
	if milestones, ok := resp["milestones"].([]interface{}); ok && hasProgress {
		for i, m := range milestones {
			mark, color := "○", colorGray
			if float64(i) <= progress {
				mark, color = "●", colorGreen
			}
			fmt.Printf("    %s%s %v%s\n", color, mark, m, colorReset)
		}
	}

	if delivered, _ := resp["delivered"].(bool); delivered {
		printSuccess("Delivered - eligible for return or replacement")
	}
	if returns, ok := resp["returns"].(map[string]interface{}); ok {
		printReturnRequests(returns)
	}
}

// =============================================================================
// RETURNS COMMANDS
// =============================================================================

func runReturns(args []string) {
	fs := newFlagSet("returns", "returns -tracking AWB [options]")
	var tracking string
	fs.StringVar(&tracking, "tracking", "", "Carrier tracking number (required)")
	parse(fs, args)

	if tracking == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("GET", "/returns/"+url.PathEscape(tracking), flight.ViewReturns, nil)
	if err != nil {
		fatal("Failed to get return status: %v", err)
	}

	if quiet {
		fmt.Println(resp["has_request"])
		return
	}
	printReturnRequests(resp)
}

func printReturnRequests(status map[string]interface{}) {
	requests, _ := status["requests"].([]interface{})
	if len(requests) == 0 {
		printInfo("No return or replacement requests")
		return
	}
	fmt.Printf("  %sRequests:%s\n", colorYellow, colorReset)
	for _, r := range requests {
		if m, ok := r.(map[string]interface{}); ok {
			fmt.Printf("    - #%v %v: %v [%v] %v\n",
				m["id"], m["request_type"], m["reason"], m["status"], m["request_date"])
		}
	}
}

// imageList collects repeated -image flags.
type imageList []string

func (l *imageList) String() string     { return strings.Join(*l, ",") }
func (l *imageList) Set(v string) error { *l = append(*l, v); return nil }

func runSubmitReturn(args []string) {
	fs := newFlagSet("submit-return", "submit-return -tracking AWB -type Return|Replacement -reason TEXT [options]")
	var tracking, reqType, reason, comments, name, email, phone string
	var images imageList
	fs.StringVar(&tracking, "tracking", "", "Carrier tracking number (required)")
	fs.StringVar(&reqType, "type", "Return", "Return or Replacement")
	fs.StringVar(&reason, "reason", "", "Reason (required)")
	fs.StringVar(&comments, "comments", "", "Additional comments")
	fs.StringVar(&name, "name", "", "Customer name")
	fs.StringVar(&email, "email", "", "Customer email")
	fs.StringVar(&phone, "phone", "", "Customer phone")
	fs.Var(&images, "image", "Image file to attach (repeatable)")
	parse(fs, args)

	if tracking == "" || reason == "" {
		fs.Usage()
		os.Exit(1)
	}

	dataURLs := make([]string, 0, len(images))
	for _, path := range images {
		du, err := imageDataURL(path)
		if err != nil {
			fatal("Failed to read image: %v", err)
		}
		dataURLs = append(dataURLs, du)
	}

	reqBody := map[string]interface{}{
		"trackingNumber": tracking,
		"type":           reqType,
		"reason":         reason,
		"comments":       comments,
		"customerName":   name,
		"customerEmail":  email,
		"customerPhone":  phone,
		"images":         dataURLs,
	}

	resp, err := doRequest("POST", "/returns", flight.ViewReturns, reqBody)
	if err != nil {
		fatal("Failed to submit return: %v", err)
	}

	requestID := fmt.Sprint(resp["request_id"])
	if quiet {
		fmt.Println(requestID)
		return
	}
	printSuccess("%s request submitted", reqType)
	fmt.Printf("  Request ID: %s%s%s\n", colorCyan, requestID, colorReset)
}

// imageDataURL reads a file and encodes it as a base64 data URL.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s: not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// =============================================================================
// HTTP
// =============================================================================

func doRequest(method, path, view string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	reqURL := strings.TrimSuffix(serverURL, "/") + path
	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	tok := flight.New(view)
	if header, err := flight.FormatHeader(tok); err == nil {
		req.Header.Set(flight.HeaderName, header)
	}

	if !quiet {
		printRequest(method, path, tok.ID, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path, flightID string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s %s(flight %s)%s\n",
		colorYellow, colorReset, colorBold, method, path, colorReset, colorGray, flightID, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
