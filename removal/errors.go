package removal

import (
	"errors"
	"fmt"
)

// Kind 失败类别
type Kind int

const (
	KindUnknown Kind = iota
	// KindDecode base64 非法
	KindDecode
	// KindImageFormat 字节不是可识别的图像
	KindImageFormat
	// KindSegmentation 分割后端失败或返回了无法解码的数据
	KindSegmentation
	// KindResize 目标尺寸非法
	KindResize
	// KindEncode 输出编码失败
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "DecodeError"
	case KindImageFormat:
		return "ImageFormatError"
	case KindSegmentation:
		return "SegmentationError"
	case KindResize:
		return "ResizeError"
	case KindEncode:
		return "EncodeError"
	default:
		return "UnknownError"
	}
}

// Error 流水线某一步的失败
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf 返回 err 链上第一个 *Error 的类别
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func fail(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}
