package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// PeriodDigest is the per-period aggregate sent to the summarizer. The
// model never sees raw samples, only counts and field averages.
type PeriodDigest struct {
	Label            string  `json:"label"`
	SampleCount      int     `json:"sample_count"`
	MeanConductivity float64 `json:"mean_conductivity"`
	MeanNitrate      float64 `json:"mean_nitrate"`
}

// SummaryResult defines the structured output expected from the model.
type SummaryResult struct {
	Summary         string   `json:"summary" jsonschema_description:"A short narrative describing how water quality evolved across the sampling periods, in Persian"`
	Anomalies       []string `json:"anomalies" jsonschema_description:"Descriptions of unusual values or sudden shifts between periods, in Persian"`
	Recommendations []string `json:"recommendations" jsonschema_description:"Practical monitoring or remediation recommendations, in Persian"`
}

// SummaryService defines the interface for requesting narrative dataset summaries.
type SummaryService interface {
	SummarizeDataset(ctx context.Context, digests []PeriodDigest) (*SummaryResult, error)
}

// summaryServiceImpl implements the SummaryService interface.
type summaryServiceImpl struct {
	client openai.Client
	schema interface{}
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewSummaryService creates and initializes a new SummaryService.
func NewSummaryService() (SummaryService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	schema := GenerateSchema[SummaryResult]()

	return &summaryServiceImpl{
		client: client,
		schema: schema,
	}, nil
}

const systemPrompt = `You are a water-quality analyst reviewing periodic sampling campaigns.

You receive per-period aggregates of a monitoring dataset: for each sampling period, the number of samples, the mean electrical conductivity (µS/cm) and the mean nitrate concentration (mg/L).

Write for the operators of the monitoring network, in Persian (Farsi):
1. summary: a concise narrative (3-5 sentences) of how overall water quality evolved across the periods.
2. anomalies: notable jumps, drops or suspicious values between consecutive periods. Empty list if nothing stands out.
3. recommendations: concrete monitoring or remediation actions. Always give at least one.

Base every statement strictly on the provided aggregates. Do not invent stations or measurements.

Output **strictly** in JSON.`

// SummarizeDataset sends the per-period digests to the model and returns
// the structured narrative result.
func (s *summaryServiceImpl) SummarizeDataset(ctx context.Context, digests []PeriodDigest) (*SummaryResult, error) {
	if len(digests) == 0 {
		return nil, errors.New("no periods to summarize")
	}

	payload, err := json.Marshal(digests)
	if err != nil {
		return nil, fmt.Errorf("error serializing period digests: %w", err)
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "summary_result",
		Description: openai.String("Structured narrative summary of the water-quality dataset"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(payload)),
		},
		ResponseFormat: respFormat,
		Model:          openai.ChatModelGPT4o,
	})

	if err != nil {
		return nil, fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, errors.New("received empty response from OpenAI")
	}

	var result SummaryResult
	err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result)
	if err != nil {
		log.Printf("Failed to unmarshal OpenAI response: %s\nRaw response: %s", err, chat.Choices[0].Message.Content)
		return nil, fmt.Errorf("error unmarshalling OpenAI response: %w", err)
	}

	return &result, nil
}

// FallbackSummary returns the static result shown when the summarization
// call fails or the service is not configured.
func FallbackSummary() *SummaryResult {
	return &SummaryResult{
		Summary: "خلاصه تحلیلی در حال حاضر در دسترس نیست. داده‌های نمونه‌برداری با موفقیت پردازش شدند اما سرویس تولید گزارش پاسخ نداد.",
		Anomalies: []string{
			"بررسی خودکار ناهنجاری‌ها انجام نشد.",
		},
		Recommendations: []string{
			"پایش منظم ایستگاه‌ها را طبق برنامه ادامه دهید.",
			"در صورت تکرار خطا، پیکربندی سرویس تحلیل را بررسی کنید.",
		},
	}
}
