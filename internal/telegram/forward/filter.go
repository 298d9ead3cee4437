package forward

import (
	botModels "github.com/go-telegram/bot/models"

	"channel_bot/internal/telegram/models"
)

// HasMedia 消息是否携带可识别的媒体附件
func HasMedia(msg *botModels.Message) bool {
	return len(msg.Photo) > 0 ||
		msg.Video != nil ||
		msg.Audio != nil ||
		msg.Voice != nil ||
		msg.VideoNote != nil ||
		msg.Document != nil ||
		msg.Animation != nil ||
		msg.Sticker != nil
}

// Category 按固定优先级将消息归入唯一类别
// 无媒体的纯文本在最前，video_note 归入 video，其余为 other
func Category(msg *botModels.Message) string {
	switch {
	case msg.Text != "" && !HasMedia(msg):
		return models.MediaTypeText
	case len(msg.Photo) > 0:
		return models.MediaTypePhoto
	case msg.Video != nil:
		return models.MediaTypeVideo
	case msg.Audio != nil:
		return models.MediaTypeAudio
	case msg.Voice != nil:
		return models.MediaTypeVoice
	case msg.VideoNote != nil:
		return models.MediaTypeVideo
	case msg.Document != nil:
		return models.MediaTypeDocument
	case msg.Animation != nil:
		return models.MediaTypeAnimation
	case msg.Sticker != nil:
		return models.MediaTypeSticker
	}
	return models.MediaTypeOther
}

// MediaFileID 返回媒体的 file_id；无媒体时返回空串
func MediaFileID(msg *botModels.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		return msg.Video.FileID
	case msg.Document != nil:
		return msg.Document.FileID
	case msg.Animation != nil:
		return msg.Animation.FileID
	case msg.Audio != nil:
		return msg.Audio.FileID
	case msg.Voice != nil:
		return msg.Voice.FileID
	case msg.VideoNote != nil:
		return msg.VideoNote.FileID
	case msg.Sticker != nil:
		return msg.Sticker.FileID
	}
	return ""
}

// MediaSize 返回媒体的字节大小；大小不可知时 ok 为 false
func MediaSize(msg *botModels.Message) (size int64, ok bool) {
	switch {
	case msg.Document != nil:
		size = int64(msg.Document.FileSize)
	case msg.Video != nil:
		size = int64(msg.Video.FileSize)
	case msg.Audio != nil:
		size = int64(msg.Audio.FileSize)
	case msg.Voice != nil:
		size = int64(msg.Voice.FileSize)
	case msg.VideoNote != nil:
		size = int64(msg.VideoNote.FileSize)
	case msg.Animation != nil:
		size = int64(msg.Animation.FileSize)
	case msg.Sticker != nil:
		size = int64(msg.Sticker.FileSize)
	case len(msg.Photo) > 0:
		// 取最大尺寸的版本
		size = int64(msg.Photo[len(msg.Photo)-1].FileSize)
	default:
		return 0, false
	}
	if size == 0 {
		return 0, false
	}
	return size, true
}

// WithinSizeLimits 大小是否落在任务的 [min, max] 区间内（含边界）
// 未配置区间或大小不可知时始终通过
func WithinSizeLimits(msg *botModels.Message, task *models.ForwardTask) bool {
	if task.MinMediaSize == nil && task.MaxMediaSize == nil {
		return true
	}

	size, ok := MediaSize(msg)
	if !ok {
		// 未知大小不拦截
		return true
	}

	if task.MinMediaSize != nil && size < *task.MinMediaSize {
		return false
	}
	if task.MaxMediaSize != nil && size > *task.MaxMediaSize {
		return false
	}
	return true
}

// MatchesFilter 消息是否通过任务的类型与大小过滤
func MatchesFilter(msg *botModels.Message, task *models.ForwardTask) bool {
	if !task.AllowsMediaType(Category(msg)) {
		return false
	}
	return WithinSizeLimits(msg, task)
}
