package model

// RemoveBackgroundRequest 请求体
// ImageBase64 用指针区分缺失字段与空字符串
type RemoveBackgroundRequest struct {
	ImageBase64 *string `json:"image_base64"`
}

// RemoveBackgroundResponse 成功响应
type RemoveBackgroundResponse struct {
	Message     string `json:"message"`
	ImageBase64 string `json:"image_base64"`
}

// ErrorResponse 失败响应，所有失败只暴露一段可读的 detail
type ErrorResponse struct {
	Detail string `json:"detail"`
}

const MessageRemoved = "Background removed successfully"
