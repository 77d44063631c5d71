package contract

import (
	"fmt"
	"strconv"
)

// Emotion: 七类固定情绪标签名。
type Emotion string

const (
	Anger    Emotion = "anger"
	Disgust  Emotion = "disgust"
	Fear     Emotion = "fear"
	Joy      Emotion = "joy"
	Sadness  Emotion = "sadness"
	Surprise Emotion = "surprise"
	Neutral  Emotion = "neutral"
)

// 顺序即索引，不得调整。
var emotions = [...]Emotion{Anger, Disgust, Fear, Joy, Sadness, Surprise, Neutral}

var emotionIndex = func() map[Emotion]Label {
	m := make(map[Emotion]Label, len(emotions))
	for i, e := range emotions {
		m[e] = Label(i)
	}
	return m
}()

// Emotions 返回按索引排序的全部标签名。
func Emotions() []Emotion {
	out := make([]Emotion, len(emotions))
	copy(out, emotions[:])
	return out
}

// Label 查找固定索引；枚举外的值返回 ErrUnknownEmotion。
// 精确匹配，不做大小写或空白归一。
func (e Emotion) Label() (Label, error) {
	l, ok := emotionIndex[e]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEmotion, string(e))
	}
	return l, nil
}

func (l Label) String() string { return strconv.Itoa(int(l)) }
