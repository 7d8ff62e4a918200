package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bobalog/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

const (
	defaultOpenAIInsightModel   = "gpt-4o-mini"
	defaultDeepSeekInsightModel = "deepseek-chat"
	defaultInsightMaxTokens     = 1200
	defaultInsightTemperature   = 0.7
)

const defaultInsightSystemPrompt = `你是一位幽默又專業的手搖飲分析師。使用者會提供一群住在台北的朋友的手搖飲紀錄（JSON）。
請以繁體中文輸出一個 JSON 物件，不要輸出其他文字，欄位如下：
{"summary": string, "healthTip": string, "awards": [{"title": string, "recipient": string, "description": string}], "predictedTrend": string}
1. summary：整體飲用習慣（常喝品牌、配料）。
2. healthTip：根據甜度、冰塊、配料的趨勢給一個健康建議。
3. awards：替每位飲用者頒發有趣的獎項，例如「咀嚼機器」「糖分之王」。
4. predictedTrend：依據評論推薦下一個值得嘗試的口味。`

// ErrNoRecordsToAnalyze 表示没有任何记录可供分析。
var ErrNoRecordsToAnalyze = errors.New("no records to analyze")

// ErrInvalidInsightResponse 表示模型响应无法解析为预期的 JSON。
var ErrInvalidInsightResponse = errors.New("invalid insight response")

// InsightAward 是颁给某位饮用者的趣味奖项。
type InsightAward struct {
	Title       string `json:"title"`
	Recipient   string `json:"recipient"`
	Description string `json:"description"`
}

// InsightResult 是 AI 分析的结果。
type InsightResult struct {
	Summary          string         `json:"summary"`
	HealthTip        string         `json:"healthTip"`
	Awards           []InsightAward `json:"awards"`
	PredictedTrend   string         `json:"predictedTrend"`
	PromptTokens     int            `json:"-"`
	CompletionTokens int            `json:"-"`
}

type insightRecord struct {
	Who      string  `json:"who"`
	Item     string  `json:"item"`
	Toppings string  `json:"toppings"`
	Sugar    string  `json:"sugar"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
	Rating   int     `json:"rating"`
	Review   string  `json:"review"`
}

// InsightService 基于大模型接口生成饮品分析。
type InsightService struct {
	client *aiChatClient
	logger *slog.Logger
}

// NewInsightService 构造默认的 InsightService。
func NewInsightService(settings *SystemSettingService, logger *slog.Logger) *InsightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightService{
		client: newAIChatClient(settings, defaultOpenAIInsightModel, defaultDeepSeekInsightModel),
		logger: logger,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *InsightService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *InsightService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *InsightService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// SetOpenAIModel 指定 OpenAI 所使用的模型名称。
func (s *InsightService) SetOpenAIModel(model string) {
	s.client.SetOpenAIModel(model)
}

// SetDeepSeekModel 指定 DeepSeek 所使用的模型名称。
func (s *InsightService) SetDeepSeekModel(model string) {
	s.client.SetDeepSeekModel(model)
}

// Generate 调用当前配置的 AI 平台分析全部记录。
// 没有记录时返回 ErrNoRecordsToAnalyze，未配置 API Key 时返回 ErrAIAPIKeyMissing。
func (s *InsightService) Generate(ctx context.Context, records []db.DrinkRecord) (InsightResult, error) {
	if len(records) == 0 {
		return InsightResult{}, ErrNoRecordsToAnalyze
	}

	userPrompt, err := buildInsightPrompt(records)
	if err != nil {
		return InsightResult{}, err
	}
	logAIExchange(s.logger, "INSIGHT", "prompt", userPrompt)

	settings, err := s.client.settings.GetSettings()
	if err != nil {
		return InsightResult{}, fmt.Errorf("讀取系統設定失敗: %w", err)
	}

	systemPrompt := strings.TrimSpace(settings.AIInsightPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultInsightSystemPrompt
	}

	resp, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    defaultInsightMaxTokens,
		Temperature:  defaultInsightTemperature,
		JSONOnly:     true,
	})
	if err != nil {
		return InsightResult{}, err
	}
	logAIExchange(s.logger, "INSIGHT", "response", resp.Content)

	result, err := parseInsightResult(resp.Content)
	if err != nil {
		return InsightResult{}, err
	}
	result.PromptTokens = resp.PromptTokens
	result.CompletionTokens = resp.CompletionTokens
	return result, nil
}

func buildInsightPrompt(records []db.DrinkRecord) (string, error) {
	summary := make([]insightRecord, 0, len(records))
	for _, record := range records {
		toppings := strings.TrimSpace(record.Toppings)
		if toppings == "" {
			toppings = "None"
		}
		summary = append(summary, insightRecord{
			Who:      record.DrinkerName,
			Item:     record.Brand + " - " + record.DrinkName,
			Toppings: toppings,
			Sugar:    record.SugarLevel,
			Price:    record.Price,
			Date:     record.Date,
			Rating:   record.Rating,
			Review:   record.Review,
		})
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode insight data: %w", err)
	}
	return "紀錄資料：\n" + string(data), nil
}

// parseInsightResult 解析模型输出，容忍 ```json 代码块包裹。
func parseInsightResult(content string) (InsightResult, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var result InsightResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return InsightResult{}, fmt.Errorf("%w: %v", ErrInvalidInsightResponse, err)
	}
	if strings.TrimSpace(result.Summary) == "" {
		return InsightResult{}, fmt.Errorf("%w: summary is empty", ErrInvalidInsightResponse)
	}
	return result, nil
}

var insightPolicy = bluemonday.UGCPolicy()

// RenderInsightHTML 将分析结果组装为 markdown，经 goldmark 渲染后再用 bluemonday 清洗。
func RenderInsightHTML(result InsightResult) (string, error) {
	var md strings.Builder
	md.WriteString("## 飲用總結\n\n")
	md.WriteString(strings.TrimSpace(result.Summary))
	md.WriteString("\n\n")

	if tip := strings.TrimSpace(result.HealthTip); tip != "" {
		md.WriteString("## 健康小提醒\n\n")
		md.WriteString(tip)
		md.WriteString("\n\n")
	}

	if len(result.Awards) > 0 {
		md.WriteString("## 年度獎項\n\n")
		for _, award := range result.Awards {
			fmt.Fprintf(&md, "- **%s**（%s）：%s\n", strings.TrimSpace(award.Title), strings.TrimSpace(award.Recipient), strings.TrimSpace(award.Description))
		}
		md.WriteString("\n")
	}

	if trend := strings.TrimSpace(result.PredictedTrend); trend != "" {
		md.WriteString("## 下一杯預測\n\n")
		md.WriteString(trend)
		md.WriteString("\n")
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &buf); err != nil {
		return "", fmt.Errorf("render insight markdown: %w", err)
	}
	return insightPolicy.Sanitize(buf.String()), nil
}
