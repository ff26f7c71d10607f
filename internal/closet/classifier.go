package closet

import (
	"context"
	"log"

	"smartcloset/internal/ai"
	"smartcloset/internal/vision"
)

const classifierSystemPrompt = "你是專業的服裝分類助手。請仔細觀察圖片中的衣物，準確分類。"

const classifierPrompt = `請根據圖片中的衣物，回傳JSON格式：
{"category":"上衣/下身/外套/洋裝/鞋子/包包/帽子/襪子/飾品/特殊",
"colors":["紅","藍","綠","黃","黑","白","灰","橘","粉","紫"],
"occasion":["上班","約會","運動","正式","學校","旅遊","居家"],
"style":["簡約","甜美","韓系","美式休閒","街頭","復古","知性優雅","酷帥中性"]}

分類規則：
- 裙子 = 下身
- T恤、襯衫、毛衣 = 上衣
- 牛仔褲、長褲、短褲 = 下身
- 連身裙 = 洋裝
- 外套、夾克 = 外套

請只回傳JSON，不要其他文字。`

// Classifier asks a vision LLM to classify one clothing image into the
// closed category/color/style/occasion vocabularies.
type Classifier struct {
	llm *ai.OpenAICompatibleClient
	cfg ai.ChatConfig
}

func NewClassifier(llm *ai.OpenAICompatibleClient, cfg ai.ChatConfig) *Classifier {
	return &Classifier{llm: llm, cfg: cfg}
}

// Classify returns a structurally valid descriptor for the image at path.
// Model and parse failures are absorbed into the default descriptor; only
// local I/O problems (unreadable file) surface as an error.
func (c *Classifier) Classify(ctx context.Context, path string) (GarmentDescriptor, error) {
	imageBase64, err := vision.EncodeJPEGBase64(path)
	if err != nil {
		return GarmentDescriptor{}, err
	}

	reply, err := c.llm.VisionComplete(ctx, c.cfg, classifierPrompt, imageBase64, ai.VisionOptions{
		System: classifierSystemPrompt,
	})
	if err != nil {
		log.Printf("classifier fallback: model call failed for %s: %v", path, err)
		return DefaultDescriptor(), nil
	}

	desc := ParseDescriptor(reply)
	if desc.Fallback {
		log.Printf("classifier fallback: unparseable reply for %s: %.200s", path, reply)
	}
	return desc, nil
}
