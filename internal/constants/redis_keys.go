package constants

// Redis Key 前缀和格式常量
// 统一命名规范: screener:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "screener"

	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// EmailModulePrefix 邮件接收模块
	EmailModulePrefix = "email"
	// ReportModulePrefix 筛选报告模块
	ReportModulePrefix = "report"

	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到SubmissionID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityProcessed 已处理标记实体
	EntityProcessed = "processed"
	// EntityRun 筛选运行实体
	EntityRun = "run"

	// KeyFileMD5Set 文件MD5集合，快速去重 (SET)
	// 格式: screener:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionID MD5到SubmissionID的映射 (STRING)
	// 格式: screener:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyProcessedEmail 已处理邮件Message-ID标记 (STRING)
	// 格式: screener:email:processed:{message_id}
	KeyProcessedEmail = AppPrefix + ":" + EmailModulePrefix + ":" + EntityProcessed + ":%s"

	// KeyScreeningReport 筛选报告缓存 (STRING, JSON)
	// 格式: screener:report:run:{run_id}
	KeyScreeningReport = AppPrefix + ":" + ReportModulePrefix + ":" + EntityRun + ":%s"
)
