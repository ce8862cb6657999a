package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

// Extractor implements port.DocumentExtractor using the OpenAI Responses API.
type Extractor struct {
	client *openai.Client
	model  shared.ResponsesModel
}

// NewExtractor creates an OpenAI-backed document extractor.
func NewExtractor(cfg *config.ExtractorConfig) *Extractor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
	)
	return &Extractor{
		client: &client,
		model:  shared.ResponsesModel(cfg.Model),
	}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	fileBytes, err := os.ReadFile(input.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading document file: %w", err)
	}

	fileBlock, err := buildFileBlock(fileBytes, input.ContentType, filepath.Base(input.FilePath))
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(input.DocumentType)

	resp, err := e.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: e.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem),
				responses.ResponseInputItemUnionParam{
					OfMessage: &responses.EasyInputMessageParam{
						Role: responses.EasyInputMessageRoleUser,
						Content: responses.EasyInputMessageContentUnionParam{
							OfInputItemContentList: responses.ResponseInputMessageContentListParam{
								fileBlock,
								responses.ResponseInputContentParamOfInputText(prompt),
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling openai: %w", err)
	}

	output := strings.TrimSpace(resp.OutputText())
	if output == "" {
		return nil, errors.New("model returned an empty response")
	}

	var parsed struct {
		Fields     map[string]interface{} `json:"fields"`
		Confidence float64                `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return nil, fmt.Errorf("parsing model output: %w (raw: %s)", err, truncate(output, 500))
	}

	return &port.ExtractOutput{
		Fields:     parsed.Fields,
		Confidence: clampConfidence(parsed.Confidence),
		Method:     "openai:" + string(e.model),
	}, nil
}

func buildFileBlock(fileBytes []byte, contentType, filename string) (responses.ResponseInputContentUnionParam, error) {
	encoded := base64.StdEncoding.EncodeToString(fileBytes)
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, encoded)

	switch contentType {
	case "application/pdf":
		return responses.ResponseInputContentUnionParam{
			OfInputFile: &responses.ResponseInputFileParam{
				Filename: openai.String(filename),
				FileData: openai.String(dataURI),
			},
		}, nil
	case "image/jpeg", "image/jpg", "image/png":
		return responses.ResponseInputContentUnionParam{
			OfInputImage: &responses.ResponseInputImageParam{
				ImageURL: openai.String(dataURI),
				Detail:   responses.ResponseInputImageDetailAuto,
			},
		}, nil
	default:
		return responses.ResponseInputContentUnionParam{},
			fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
