package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobalog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"
)

var supportedAIProviders = []string{AIProviderOpenAI, AIProviderDeepSeek}

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// SystemSettings 描述可配置的 AI 设定。
type SystemSettings struct {
	AIProvider      string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	AIInsightPrompt string
}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// SystemSettingsInput 用于更新系统设置。
// API Key 为 nil 时保留原值，便于前端只回传被修改的字段。
type SystemSettingsInput struct {
	AIProvider      string
	OpenAIAPIKey    *string
	DeepSeekAPIKey  *string
	AIInsightPrompt string
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db              *gorm.DB
	httpClient      httpDoer
	openAIBaseURL   string
	deepSeekBaseURL string
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{
		db:              gdb,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		openAIBaseURL:   defaultOpenAIBaseURL,
		deepSeekBaseURL: defaultDeepSeekBaseURL,
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []string{
	db.SettingKeyAIProvider,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
	db.SettingKeyAIInsightPrompt,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := SystemSettings{AIProvider: AIProviderOpenAI, AIInsightPrompt: defaultInsightSystemPrompt}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(record.Value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = record.Value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = record.Value
		case db.SettingKeyAIInsightPrompt:
			if strings.TrimSpace(record.Value) != "" {
				result.AIInsightPrompt = record.Value
			}
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，提示词留空时回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	current, err := s.GetSettings()
	if err != nil {
		return SystemSettings{}, err
	}

	provider := normalizeAIProvider(input.AIProvider)
	if provider == "" {
		provider = AIProviderOpenAI
	}

	sanitized := SystemSettings{
		AIProvider:      provider,
		OpenAIAPIKey:    current.OpenAIAPIKey,
		DeepSeekAPIKey:  current.DeepSeekAPIKey,
		AIInsightPrompt: strings.TrimSpace(input.AIInsightPrompt),
	}
	if input.OpenAIAPIKey != nil {
		sanitized.OpenAIAPIKey = strings.TrimSpace(*input.OpenAIAPIKey)
	}
	if input.DeepSeekAPIKey != nil {
		sanitized.DeepSeekAPIKey = strings.TrimSpace(*input.DeepSeekAPIKey)
	}
	if sanitized.AIInsightPrompt == "" {
		sanitized.AIInsightPrompt = defaultInsightSystemPrompt
	}

	values := map[string]string{
		db.SettingKeyAIProvider:      sanitized.AIProvider,
		db.SettingKeyOpenAIAPIKey:    sanitized.OpenAIAPIKey,
		db.SettingKeyDeepSeekAPIKey:  sanitized.DeepSeekAPIKey,
		db.SettingKeyAIInsightPrompt: sanitized.AIInsightPrompt,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// MaskAPIKey 只保留 Key 的末四位，用于回显。
func MaskAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetDeepSeekBaseURL(base string) {
	s.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestAIConnection 调用指定 AI 平台的模型接口验证 API Key 的有效性。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	prov := normalizeAIProvider(provider)
	if prov == "" {
		prov = AIProviderOpenAI
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	base, label := providerEndpoint(prov, s.openAIBaseURL, s.deepSeekBaseURL)
	endpoint := base + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("User-Agent", "bobalog-settings/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("請求 %s 介面失敗: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s 回傳錯誤：%s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s 回傳錯誤：%s", label, resp.Status)
	}

	return nil
}

// providerEndpoint 返回平台的基础地址（去掉末尾斜杠）与显示名称。
func providerEndpoint(provider, openAIBase, deepSeekBase string) (string, string) {
	switch provider {
	case AIProviderDeepSeek:
		base := strings.TrimSpace(deepSeekBase)
		if base == "" {
			base = defaultDeepSeekBaseURL
		}
		return strings.TrimRight(base, "/"), "DeepSeek"
	default:
		base := strings.TrimSpace(openAIBase)
		if base == "" {
			base = defaultOpenAIBaseURL
		}
		return strings.TrimRight(base, "/"), "OpenAI"
	}
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
