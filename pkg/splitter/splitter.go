// Package splitter 将原始告警日志文本切分为独立的告警条目。
//
// 条目之间以一个或多个空行分隔（只含空白字符的行也算空行），
// 每个条目去掉首尾空白，空条目直接丢弃，条目内部的行内容保持不变。
package splitter

import (
	"iter"
	"strings"
)

// Split 按文件顺序惰性地产出告警条目
func Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		start := 0 // 当前条目在 text 中的起始偏移
		offset := 0
		for len(rest) > 0 {
			line, tail, found := strings.Cut(rest, "\n")
			if strings.TrimSpace(line) == "" {
				if entry := strings.TrimSpace(text[start:offset]); entry != "" {
					if !yield(entry) {
						return
					}
				}
				start = offset + len(line)
				if found {
					start++
				}
			}
			offset += len(line)
			if found {
				offset++
			}
			rest = tail
		}
		if entry := strings.TrimSpace(text[start:]); entry != "" {
			yield(entry)
		}
	}
}

// Collect 返回全部条目
func Collect(text string) []string {
	var entries []string
	for entry := range Split(text) {
		entries = append(entries, entry)
	}
	return entries
}
