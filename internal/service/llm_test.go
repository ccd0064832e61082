package service

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestLLMTokenRefreshIsConcurrencySafe(t *testing.T) {
	svc := &LLMService{
		accessToken: "initial",
		logger:      zap.NewNop(),
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				svc.setToken(fmt.Sprintf("token-%d-%d", n, j))
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if svc.currentToken() == "" {
					t.Error("Expected a non-empty token at all times")
					return
				}
			}
		}()
	}
	wg.Wait()
}
