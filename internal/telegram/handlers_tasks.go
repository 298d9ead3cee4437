package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/logger"
	"channel_bot/internal/telegram/forward"
	"channel_bot/internal/telegram/models"
)

// handleNewTask 处理 /newtask 命令
func (b *Bot) handleNewTask(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.sendErrorMessage(ctx, chatID,
			"用法: /newtask <source_id> <target_id>\n例如: /newtask -1001111 -1002222")
		return
	}

	sourceID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.sendErrorMessage(ctx, chatID, "无效的来源聊天 ID")
		return
	}
	targetID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		b.sendErrorMessage(ctx, chatID, "无效的目标聊天 ID")
		return
	}
	if sourceID == targetID {
		b.sendErrorMessage(ctx, chatID, "来源和目标不能是同一个聊天")
		return
	}

	sourceName := chatDisplayName(ctx, botInstance, sourceID)
	targetName := chatDisplayName(ctx, botInstance, targetID)

	maxSize := forward.DefaultMaxMediaSize
	task := &models.ForwardTask{
		OwnerID:        update.Message.From.ID,
		SourceID:       sourceID,
		SourceName:     sourceName,
		TargetID:       targetID,
		TargetName:     targetName,
		MediaTypes:     []string{models.MediaTypeAll},
		ForwardReplies: true,
		MaxMediaSize:   &maxSize,
		SkipDuplicates: false,
		RemoveLinks:    false,
	}
	if err := b.taskRepo.Create(ctx, task); err != nil {
		logger.L().Errorf("Failed to create forward task for user %d: %v", update.Message.From.ID, err)
		b.sendErrorMessage(ctx, chatID, "创建任务失败，请稍后重试")
		return
	}

	b.sendSuccessMessage(ctx, chatID, fmt.Sprintf(
		"任务 <b>#%d</b> 已创建\n%s → %s\n\n使用 /task %d 查看并调整过滤规则",
		task.TaskID, sourceName, targetName, task.TaskID))
}

// handleListTasks 处理 /tasks 命令
func (b *Bot) handleListTasks(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	tasks, err := b.taskRepo.ListByOwner(ctx, update.Message.From.ID)
	if err != nil {
		logger.L().Errorf("Failed to list tasks for user %d: %v", update.Message.From.ID, err)
		b.sendErrorMessage(ctx, chatID, "获取任务列表失败，请稍后重试")
		return
	}
	if len(tasks) == 0 {
		b.sendMessage(ctx, chatID, "📭 还没有转发任务，使用 /newtask 创建")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>我的转发任务</b>\n\n")
	for _, task := range tasks {
		sb.WriteString(fmt.Sprintf("<b>#%d</b> %s → %s\n", task.TaskID, task.SourceName, task.TargetName))
	}
	sb.WriteString("\n使用 /task <id> 查看任务详情")
	b.sendMessage(ctx, chatID, sb.String())
}

// handleDeleteTask 处理 /deltask 命令
func (b *Bot) handleDeleteTask(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, chatID, "用法: /deltask <task_id>")
		return
	}
	taskID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.sendErrorMessage(ctx, chatID, "无效的任务 ID")
		return
	}

	deleted, err := b.taskRepo.Delete(ctx, update.Message.From.ID, taskID)
	if err != nil {
		logger.L().Errorf("Failed to delete task %d: %v", taskID, err)
		b.sendErrorMessage(ctx, chatID, "删除任务失败，请稍后重试")
		return
	}
	if !deleted {
		b.sendErrorMessage(ctx, chatID, "没有找到该任务")
		return
	}

	// 任务删除后清空其去重缓存
	b.forwarder.ForgetTask(taskID)

	b.sendSuccessMessage(ctx, chatID, fmt.Sprintf("任务 <b>#%d</b> 已删除", taskID))
}

const taskUsage = `用法: /task <task_id> [子命令]

不带子命令时显示任务详情。

media <all|text,photo,video,...> - 允许的消息类型
size <区间> - 媒体大小限制，如 "1-10"（MB）、"500kb-2gb"，"-" 清除
caption <文本> - 自定义 caption，"-" 清除
replies <on|off> - 是否保留回复关系
dedup <on|off> - 是否跳过重复消息
links <on|off> - 是否移除链接`

// handleEditTask 处理 /task 命令
func (b *Bot) handleEditTask(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendMessage(ctx, chatID, taskUsage)
		return
	}
	taskID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.sendErrorMessage(ctx, chatID, "无效的任务 ID")
		return
	}

	task, err := b.taskRepo.Get(ctx, update.Message.From.ID, taskID)
	if err != nil {
		b.sendErrorMessage(ctx, chatID, "没有找到该任务")
		return
	}

	if len(parts) < 3 {
		b.sendMessage(ctx, chatID, formatTask(task))
		return
	}

	switch parts[2] {
	case "media":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /task <id> media <all|text,photo,video,...>")
			return
		}
		types, err := parseMediaTypes(strings.Join(parts[3:], ","))
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		task.MediaTypes = types
	case "size":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /task <id> size <区间>，如 1-10 或 500kb-2gb")
			return
		}
		minBytes, maxBytes, err := forward.ParseSizeLimits(strings.Join(parts[3:], " "))
		if err != nil {
			b.sendErrorMessage(ctx, chatID, err.Error())
			return
		}
		task.MinMediaSize = minBytes
		task.MaxMediaSize = maxBytes
	case "caption":
		if len(parts) < 4 {
			b.sendErrorMessage(ctx, chatID, "用法: /task <id> caption <文本>，\"-\" 清除")
			return
		}
		caption := strings.Join(parts[3:], " ")
		if caption == "-" {
			caption = ""
		}
		task.Caption = caption
	case "replies":
		enabled, err := parseOnOff(parts[3:])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, "用法: /task <id> replies <on|off>")
			return
		}
		task.ForwardReplies = enabled
	case "dedup":
		enabled, err := parseOnOff(parts[3:])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, "用法: /task <id> dedup <on|off>")
			return
		}
		task.SkipDuplicates = enabled
	case "links":
		enabled, err := parseOnOff(parts[3:])
		if err != nil {
			b.sendErrorMessage(ctx, chatID, "用法: /task <id> links <on|off>")
			return
		}
		task.RemoveLinks = enabled
	default:
		b.sendMessage(ctx, chatID, taskUsage)
		return
	}

	if err := b.taskRepo.Update(ctx, task); err != nil {
		logger.L().Errorf("Failed to update task %d: %v", taskID, err)
		b.sendErrorMessage(ctx, chatID, "保存任务失败，请稍后重试")
		return
	}

	b.sendSuccessMessage(ctx, chatID, fmt.Sprintf("任务 <b>#%d</b> 已更新", taskID))
}

// parseMediaTypes 解析逗号分隔的类型列表；"all" 与具体类型互斥
func parseMediaTypes(s string) ([]string, error) {
	parts := strings.Split(strings.ToLower(s), ",")
	types := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		if part == models.MediaTypeAll {
			return []string{models.MediaTypeAll}, nil
		}
		valid := false
		for _, known := range models.KnownMediaTypes {
			if part == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("未知的消息类型 %q（可用: all, %s）",
				part, strings.Join(models.KnownMediaTypes, ", "))
		}
		seen[part] = true
		types = append(types, part)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("至少需要一个消息类型")
	}
	return types, nil
}

func parseOnOff(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("missing on/off argument")
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", args[0])
}

// chatDisplayName 查询聊天标题；查不到时退化为 ID 字符串
func chatDisplayName(ctx context.Context, botInstance *bot.Bot, chatID int64) string {
	chat, err := botInstance.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil || chat == nil {
		return strconv.FormatInt(chatID, 10)
	}
	if chat.Title != "" {
		return chat.Title
	}
	if chat.Username != "" {
		return "@" + chat.Username
	}
	return strconv.FormatInt(chatID, 10)
}

func formatTask(task *models.ForwardTask) string {
	capt := task.Caption
	if capt == "" {
		capt = "（沿用原消息）"
	}
	return fmt.Sprintf(
		`⚙️ <b>任务 #%d</b>

%s → %s

类型: %s
大小: %s
Caption: %s
保留回复: %s
跳过重复: %s
移除链接: %s`,
		task.TaskID, task.SourceName, task.TargetName,
		strings.Join(task.MediaTypes, ", "),
		forward.FormatSizeRange(task.MinMediaSize, task.MaxMediaSize),
		capt,
		onOff(task.ForwardReplies), onOff(task.SkipDuplicates), onOff(task.RemoveLinks))
}
