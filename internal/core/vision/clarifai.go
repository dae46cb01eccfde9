package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// clarifaiStatusOK Clarifai 回應 status.code 成功值
const clarifaiStatusOK = 10000

// ClarifaiClient Clarifai 食物辨識模型 REST 客戶端
type ClarifaiClient struct {
	client  *resty.Client
	modelID string
}

// NewClarifaiClient 創建 Clarifai 客戶端；不自動重試，每次上傳只呼叫一次
func NewClarifaiClient(cfg config.LabelerConfig) *ClarifaiClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", fmt.Sprintf("Key %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &ClarifaiClient{
		client:  client,
		modelID: cfg.ModelID,
	}
}

type clarifaiRequest struct {
	Inputs []clarifaiInput `json:"inputs"`
}

type clarifaiInput struct {
	Data struct {
		Image struct {
			Base64 string `json:"base64"`
		} `json:"image"`
	} `json:"data"`
}

type clarifaiStatus struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

type clarifaiResponse struct {
	Status  clarifaiStatus `json:"status"`
	Outputs []struct {
		Data struct {
			Concepts []struct {
				Name  string  `json:"name"`
				Value float64 `json:"value"`
			} `json:"concepts"`
		} `json:"data"`
	} `json:"outputs"`
}

// DetectLabels 送出圖片並將 concept.value（0..1）換算為 0..100 的信心值
func (c *ClarifaiClient) DetectLabels(ctx context.Context, image []byte) ([]recipe.Label, error) {
	var input clarifaiInput
	input.Data.Image.Base64 = base64.StdEncoding.EncodeToString(image)

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(clarifaiRequest{Inputs: []clarifaiInput{input}}).
		Post(fmt.Sprintf("/models/%s/outputs", c.modelID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Clarifai: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode())
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode(), truncate(resp.String(), 200))
	}

	var result clarifaiResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrUpstream, err)
	}
	if result.Status.Code != 0 && result.Status.Code != clarifaiStatusOK {
		return nil, fmt.Errorf("%w: %d %s", ErrUpstream, result.Status.Code, result.Status.Description)
	}

	labels := make([]recipe.Label, 0)
	if len(result.Outputs) > 0 {
		for _, concept := range result.Outputs[0].Data.Concepts {
			labels = append(labels, recipe.Label{
				Name:       concept.Name,
				Confidence: concept.Value * 100,
			})
		}
	}

	common.LogDebug("Clarifai 回應",
		zap.String("model", c.modelID),
		zap.Int("concepts", len(labels)),
		zap.Duration("duration", time.Since(start)),
	)
	return labels, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
