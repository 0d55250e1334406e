package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ap-agent/service"
	"ap-agent/storage/postgres"
	"ap-agent/vars"

	"github.com/robfig/cron/v3"
)

// StartCronJobs 两个定时任务：
// 1. 收件目录轮询（邮件监听器把 PDF 落进目录，这里负责消费）
// 2. 每天凌晨 2 点清理卡死的 PROCESSING 记录
func StartCronJobs(pgRepo *postgres.APRepo, invoiceSvc *service.InvoiceService) *cron.Cron {
	c := cron.New()

	var polling sync.Mutex

	// 发票是逐张、同步处理的；Mutex 防止上一轮没跑完又进一轮
	_, _ = c.AddFunc("@every 15s", func() {
		if !polling.TryLock() {
			return
		}
		defer polling.Unlock()
		pollInbox(invoiceSvc)
	})

	_, _ = c.AddFunc("0 2 * * *", func() {
		ctx := context.Background()
		rows, err := pgRepo.ExpireStaleInvoices(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			fmt.Println("[Cron] Error:", err)
		} else {
			fmt.Printf("[Cron] 清理了 %d 条过期处理记录\n", rows)
		}
	})

	c.Start()
	return c
}

// pollInbox 扫一遍收件目录，逐张处理（无并发，一张跑完再下一张）
func pollInbox(invoiceSvc *service.InvoiceService) {
	entries, err := os.ReadDir(vars.InboxDir)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Println("[Cron] 读取收件目录失败:", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(vars.InboxDir, entry.Name())
		fmt.Printf("🚀 AI Agent Activated for: %s\n", entry.Name())

		if _, err := invoiceSvc.ProcessFile(context.Background(), path); err != nil {
			fmt.Printf("[Cron] 处理 %s 失败: %v\n", entry.Name(), err)
		}
	}
}
