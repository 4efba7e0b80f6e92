package chat

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/config"
	"github.com/PhacedDaWind/SmartFit-sub000/internal/platform/logger"
	"github.com/tmc/langchaingo/chains"
	langopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/memory"
	"gorm.io/gorm"
)

// personaPrompt 固定了助手的人设和话题边界。
// 话题限制通过提示词构造实现，不对模型的回复做校验。
const personaPrompt = `你是SmartFit的健身助手，只回答健身、运动、营养和健康作息相关的问题。
回答保持简短、具体、可执行。与健身无关的问题请礼貌地拒绝并引导回健身话题。
如果某个建议配一张图会更直观，在回复末尾追加一行 [image: 英文关键词]，关键词不超过三个单词。`

// historyWindow 是送入模型的对话记忆窗口大小
const historyWindow = 10

// imageTagPattern 匹配回复末尾的配图标记
var imageTagPattern = regexp.MustCompile(`\[image:\s*([^\]]+)\]`)

// Reply 是一次聊天调用的结果。
type Reply struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Service 承载AI助手的完整流程：持久化提问、携带历史调用模型、持久化回复。
type Service struct {
	db  *gorm.DB
	cfg config.ChatConfig
}

// NewService 创建聊天服务。
func NewService(db *gorm.DB, cfg config.ChatConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

// Send 处理一条用户消息并返回助手回复。
// 模型调用失败被转换为错误值返回，调用方据此给出用户可见的提示。
func (s *Service) Send(ctx context.Context, userID uint, content string) (Reply, error) {
	// 1. 先落库用户消息
	userMsg := Message{UserID: userID, Text: content, IsFromUser: true, Timestamp: time.Now()}
	if err := s.db.WithContext(ctx).Create(&userMsg).Error; err != nil {
		return Reply{}, fmt.Errorf("保存用户消息失败: %w", err)
	}

	// 2. 取出历史并装入对话窗口记忆
	var history []Message
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp asc").
		Find(&history).Error; err != nil {
		return Reply{}, fmt.Errorf("读取聊天历史失败: %w", err)
	}

	chatMemory := memory.NewConversationWindowBuffer(historyWindow)
	_ = chatMemory.ChatHistory.AddUserMessage(ctx, personaPrompt)
	for _, h := range history {
		if h.IsFromUser {
			_ = chatMemory.ChatHistory.AddUserMessage(ctx, h.Text)
		} else {
			_ = chatMemory.ChatHistory.AddAIMessage(ctx, h.Text)
		}
	}

	// 3. 调用OpenAI兼容端点
	llm, err := langopenai.New(
		langopenai.WithToken(os.Getenv(s.cfg.TokenEnv)),
		langopenai.WithModel(s.cfg.Model),
		langopenai.WithBaseURL(s.cfg.BaseURL),
	)
	if err != nil {
		return Reply{}, fmt.Errorf("初始化模型客户端失败: %w", err)
	}
	chain := chains.NewConversation(llm, chatMemory)
	raw, err := chains.Run(ctx, chain, content, chains.WithMaxTokens(400))
	if err != nil {
		logger.Warn("chat.llm_failed", "uid", userID, "err", err.Error())
		return Reply{}, fmt.Errorf("助手暂时无法回复: %w", err)
	}

	// 4. 提取配图关键词并落库助手回复
	text, keyword := extractImageKeyword(raw)
	imageURL := ""
	if keyword != "" {
		imageURL = "https://source.unsplash.com/featured/?" + url.QueryEscape(keyword)
	}

	aiMsg := Message{UserID: userID, Text: text, IsFromUser: false, ImageURL: imageURL, Timestamp: time.Now()}
	if err := s.db.WithContext(ctx).Create(&aiMsg).Error; err != nil {
		return Reply{}, fmt.Errorf("保存助手回复失败: %w", err)
	}

	return Reply{Text: text, ImageURL: imageURL}, nil
}

// History 返回用户的全部聊天记录，按时间正序。
func (s *Service) History(ctx context.Context, userID uint) ([]Message, error) {
	var messages []Message
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp asc").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("读取聊天历史失败: %w", err)
	}
	return messages, nil
}

// extractImageKeyword 从回复中剥离 [image: keyword] 标记。
// 返回去掉标记后的正文和关键词；没有标记时关键词为空串。
func extractImageKeyword(reply string) (text, keyword string) {
	match := imageTagPattern.FindStringSubmatch(reply)
	if match == nil {
		return strings.TrimSpace(reply), ""
	}
	keyword = strings.TrimSpace(match[1])
	text = strings.TrimSpace(imageTagPattern.ReplaceAllString(reply, ""))
	return text, keyword
}
