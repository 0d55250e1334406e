package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"ap-agent/api/handler"
	"ap-agent/api/router"
	"ap-agent/job"
	"ap-agent/logic/chat"
	"ap-agent/logic/extract"
	"ap-agent/logic/ledger"
	"ap-agent/logic/notify"
	"ap-agent/logic/payment"
	"ap-agent/logic/pipeline"
	"ap-agent/logic/validate"
	"ap-agent/service"
	"ap-agent/storage/es"
	"ap-agent/storage/postgres"
	"ap-agent/vars"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// 0. 加载 .env（没有也不算错，Docker 部署走环境变量）
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	// 1. 初始化 DB
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		vars.PGHOST, vars.PGUSER, vars.PGPWD, vars.PGDB, vars.PGPORT)
	db, err := postgres.InitDB(dsn)
	if err != nil {
		panic(err)
	}
	if err := postgres.Seed(db); err != nil {
		panic(err)
	}

	// 2. 初始化仓储层
	apRepo := postgres.NewAPRepo(db)

	// 3. 初始化 LLM Model + 提取器
	chatModel := chat.CreateChatModel(ctx)
	extractor := extract.NewLLMExtractor(chatModel)

	// 4. 校验引擎 + 决策流水线
	validator := validate.NewValidator(apRepo, validate.DefaultConfig())
	pipe := pipeline.NewPipeline(extractor, validator, pipeline.DefaultConfig())

	// 5. ES 审计索引
	auditIndexer, err := es.NewAuditIndexer([]string{vars.ESADDR}, vars.AuditIndex)
	if err != nil {
		panic(fmt.Sprintf("ES 初始化失败:%v", err))
	}
	log.Println("✅ ES 审计索引就绪")

	// 6. 下游执行器（流水线之外，按终态决策触发）
	gateway := payment.NewStripeGateway(vars.StripeSecretKey)
	glLedger := ledger.NewLedger(apRepo)
	notifier := notify.NewSlackNotifier(vars.SlackWebhookURL)

	// 7. 初始化 Service (业务层)
	invoiceSvc := service.NewInvoiceService(apRepo, pipe, auditIndexer, gateway, glLedger, notifier)
	auditSvc := service.NewAuditService(apRepo, auditIndexer.GetClient())

	// 8. 启动定时任务（收件目录轮询 + 过期记录清理）
	if err := os.MkdirAll(vars.InboxDir, 0o755); err != nil {
		panic(err)
	}
	job.StartCronJobs(apRepo, invoiceSvc)
	log.Printf("📡 Monitoring %s for Invoices...", vars.InboxDir)

	// 9. 初始化 Handler (API 层) 并启动 Web Server
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc, auditSvc)

	r := gin.Default()
	router.RegisterRoutes(r, invoiceHandler)

	log.Println("Server running on :8081")
	if err := r.Run(":8081"); err != nil {
		log.Fatal(err)
	}
}
