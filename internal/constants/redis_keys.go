package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "resume"

	// SessionModulePrefix 会话模块
	SessionModulePrefix = "session"
	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntityData 会话数据实体
	EntityData = "data"
	// EntityResult 解析结果实体
	EntityResult = "result"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"

	// KeySessionData 会话数据 (STRING, JSON)
	// 格式: resume:session:data:{secretScope}:{sessionID}
	KeySessionData = AppPrefix + ":" + SessionModulePrefix + ":" + EntityData + ":%s:%s"

	// KeyParseResult 按文件MD5缓存的解析结果 (STRING, JSON)
	// 格式: resume:parse:result:{md5}
	KeyParseResult = AppPrefix + ":" + ParseModulePrefix + ":" + EntityResult + ":%s"

	// KeyParsedFileMD5Set 已解析文件的MD5集合，用于统计重复上传 (SET)
	// 格式: resume:parse:dedup_set
	KeyParsedFileMD5Set = AppPrefix + ":" + ParseModulePrefix + ":" + EntityDedupSet
)
