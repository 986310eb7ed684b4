package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// localState 已处理邮件的本地记录，Redis不可用时的降级方案
type localState struct {
	mu   sync.Mutex
	path string
	ids  map[string]bool
}

// newLocalState 加载本地状态文件，文件不存在时从空集开始
func newLocalState(path string) (*localState, error) {
	s := &localState{
		path: path,
		ids:  make(map[string]bool),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("读取状态文件 %s 失败: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("解析状态文件 %s 失败: %w", path, err)
	}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s, nil
}

// Seen 判断邮件ID是否已处理
func (s *localState) Seen(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[messageID]
}

// Mark 标记邮件ID已处理并落盘
func (s *localState) Mark(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[messageID] = true
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
