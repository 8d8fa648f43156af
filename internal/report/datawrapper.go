package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/go-resty/resty/v2"
)

const (
	// DatawrapperAPIURL is the charts collection of the Datawrapper v3 API.
	DatawrapperAPIURL = "https://api.datawrapper.de/v3/charts"

	// DefaultByline credits the chart when none is configured.
	DefaultByline = "sidelined"

	barColor     = "#c52222"
	exportWidth  = 600
	exportBorder = 10
	sourceName   = "Internal Model (Basketball-Reference)"
	sourceURL    = "https://www.basketball-reference.com/"
)

// ChartTitle is the table title for season.
func ChartTitle(season int) string {
	return fmt.Sprintf("Projected Wins Lost Due to Injury (%s)", model.SeasonLabel(season))
}

// ChartIntro is the text shown above the table.
func ChartIntro(season int) string {
	return fmt.Sprintf("This table shows the estimated number of marginal wins each team is projected to lose due to player injuries over the %s season.", model.SeasonLabel(season))
}

// DatawrapperClient drives the chart API: create, upload, describe, publish
// and export.
type DatawrapperClient struct {
	client  *resty.Client
	baseURL string
	byline  string
	logger  *log.Logger
}

// NewDatawrapperClient creates a client. An empty baseURL selects
// DatawrapperAPIURL; an empty apiKey is ErrMissingAPIKey.
func NewDatawrapperClient(apiKey, baseURL, byline string, timeout time.Duration, logger *log.Logger) (*DatawrapperClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DatawrapperAPIURL
	}
	if byline == "" {
		byline = DefaultByline
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[datawrapper] ", log.LstdFlags)
	}

	client := resty.New().
		SetTimeout(timeout).
		SetAuthToken(apiKey)

	return &DatawrapperClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		byline:  byline,
		logger:  logger,
	}, nil
}

type createChartRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

type createChartResponse struct {
	ID string `json:"id"`
}

type publishResponse struct {
	Data struct {
		PublicURL string `json:"publicUrl"`
	} `json:"data"`
}

// PublishTable runs the whole workflow for teams and returns the public chart
// URL. The PNG export is written to imagePath. The first failing step aborts;
// a chart created by earlier steps is left in place.
func (c *DatawrapperClient) PublishTable(ctx context.Context, season int, teams []model.TeamLoss, imagePath string) (string, error) {
	c.logger.Println("--- Starting Datawrapper workflow ---")

	data, err := EncodeCSV(teams)
	if err != nil {
		return "", err
	}

	chartID, err := c.CreateChart(ctx, ChartTitle(season))
	if err != nil {
		return "", err
	}
	if err := c.UploadData(ctx, chartID, data); err != nil {
		return "", err
	}
	if err := c.UpdateMetadata(ctx, chartID, c.Metadata(season)); err != nil {
		return "", err
	}
	publicURL, err := c.Publish(ctx, chartID)
	if err != nil {
		return "", err
	}
	if err := c.ExportPNG(ctx, chartID, imagePath); err != nil {
		return "", err
	}

	c.logger.Printf("✓ Public URL: %s", publicURL)
	return publicURL, nil
}

// CreateChart creates an empty table chart and returns its id.
func (c *DatawrapperClient) CreateChart(ctx context.Context, title string) (string, error) {
	c.logger.Println("Step 1: Creating chart")

	res, err := c.client.R().
		SetContext(ctx).
		SetBody(createChartRequest{Title: title, Type: "tables"}).
		Post(c.baseURL)
	if err := checkResponse("create chart", c.baseURL, res, err); err != nil {
		return "", err
	}

	var created createChartResponse
	if err := json.Unmarshal(res.Body(), &created); err != nil {
		return "", fmt.Errorf("decode create chart response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create chart: response has no chart id")
	}

	c.logger.Printf("✓ Chart created with ID %s", created.ID)
	return created.ID, nil
}

// UploadData replaces the chart's data with a CSV document.
func (c *DatawrapperClient) UploadData(ctx context.Context, chartID string, data []byte) error {
	c.logger.Printf("Step 2: Uploading data to chart %s", chartID)

	url := c.chartURL(chartID, "data")
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/csv").
		SetBody(data).
		Put(url)
	if err := checkResponse("upload data", url, res, err); err != nil {
		return err
	}

	c.logger.Println("✓ Data uploaded")
	return nil
}

// Metadata returns the describe and visualize settings for season's table.
func (c *DatawrapperClient) Metadata(season int) map[string]any {
	return map[string]any{
		"metadata": map[string]any{
			"describe": map[string]any{
				"intro":       ChartIntro(season),
				"byline":      c.byline,
				"source-name": sourceName,
				"source-url":  sourceURL,
			},
			"visualize": map[string]any{
				"table-columns": map[string]any{
					"wins_lost": map[string]any{
						"barChart":      true,
						"barColor":      barColor,
						"number-format": "0.00",
					},
				},
			},
		},
	}
}

// UpdateMetadata patches the chart's metadata.
func (c *DatawrapperClient) UpdateMetadata(ctx context.Context, chartID string, metadata map[string]any) error {
	c.logger.Println("Step 3: Updating chart metadata")

	url := c.chartURL(chartID, "")
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(metadata).
		Patch(url)
	if err := checkResponse("update metadata", url, res, err); err != nil {
		return err
	}

	c.logger.Println("✓ Metadata updated")
	return nil
}

// Publish publishes the chart and returns its public URL.
func (c *DatawrapperClient) Publish(ctx context.Context, chartID string) (string, error) {
	c.logger.Printf("Step 4: Publishing chart %s", chartID)

	url := c.chartURL(chartID, "publish")
	res, err := c.client.R().
		SetContext(ctx).
		Post(url)
	if err := checkResponse("publish", url, res, err); err != nil {
		return "", err
	}

	var published publishResponse
	if err := json.Unmarshal(res.Body(), &published); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}

	c.logger.Println("✓ Chart published")
	return published.Data.PublicURL, nil
}

// ExportPNG downloads the chart as a PNG and writes it to path.
func (c *DatawrapperClient) ExportPNG(ctx context.Context, chartID, path string) error {
	c.logger.Printf("Step 5: Downloading chart %s as PNG", chartID)

	url := c.chartURL(chartID, "export/png")
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"unit":        "px",
			"mode":        "rgb",
			"width":       fmt.Sprint(exportWidth),
			"plain":       "false",
			"borderWidth": fmt.Sprint(exportBorder),
		}).
		Get(url)
	if err := checkResponse("export png", url, res, err); err != nil {
		return err
	}

	if err := os.WriteFile(path, res.Body(), 0o644); err != nil {
		return fmt.Errorf("write chart image: %w", err)
	}

	c.logger.Printf("✓ Image saved to %s", path)
	return nil
}

func (c *DatawrapperClient) chartURL(chartID, suffix string) string {
	if suffix == "" {
		return c.baseURL + "/" + chartID
	}
	return c.baseURL + "/" + chartID + "/" + suffix
}

func checkResponse(op, url string, res *resty.Response, err error) error {
	if err != nil {
		return &model.RemoteFetchError{Op: op, URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return &model.RemoteFetchError{
			Op:         op,
			URL:        url,
			StatusCode: res.StatusCode(),
			Body:       res.String(),
		}
	}
	return nil
}

// DatawrapperSink publishes a result as a chart.
type DatawrapperSink struct {
	client    *DatawrapperClient
	imagePath string
	publicURL string
}

// NewDatawrapperSink writes the exported image to imagePath.
func NewDatawrapperSink(client *DatawrapperClient, imagePath string) *DatawrapperSink {
	return &DatawrapperSink{client: client, imagePath: imagePath}
}

func (s *DatawrapperSink) Name() string {
	return "datawrapper"
}

func (s *DatawrapperSink) Write(ctx context.Context, result *model.Result) error {
	url, err := s.client.PublishTable(ctx, result.Season, result.Teams, s.imagePath)
	if err != nil {
		return err
	}
	s.publicURL = url
	return nil
}

// PublicURL is the URL of the last chart written.
func (s *DatawrapperSink) PublicURL() string {
	return s.publicURL
}
