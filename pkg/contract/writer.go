package contract

import (
	"context"
	"io"
)

// Writer: 将字节流持久化到 id 对应的目标文件。
// 约束：
//  1. 同一 FileID 单写者；
//  2. 按字节透传，不读取/修改业务内容；
//  3. ctx 取消需尽快返回；
//  4. 错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, id FileID, r io.Reader) error
}
