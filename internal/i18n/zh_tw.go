package i18n

// ZhTWMessages 繁體中文消息目录
// ZhTWMessages Traditional Chinese message catalog
var ZhTWMessages = map[string]string{
	"app.title":   "備忘助理",
	"app.tagline": "SMART MEMO",
	"app.count":   "%d 則",
	"app.welcome": "嗨！我是你的智能備忘助理 👋\n你可以把任何工作細節、待辦、靈感丟給我。需要整理時，就問我「我還有什麼沒做？」",

	"tab.chat":   "對話",
	"tab.memory": "備忘庫",

	"status.ready":    "就緒",
	"status.thinking": "思考中⋯",
	"status.busy":     "上一則訊息還在處理中",

	"input.placeholder": "輸入待辦、靈感、細節⋯",

	"keys.tab":    "tab 切換",
	"keys.send":   "enter 送出",
	"keys.quick":  "alt+1-3 快速提問",
	"keys.nav":    "↑/↓ 選擇",
	"keys.delete": "d 刪除",
	"keys.clear":  "C 清除全部",
	"keys.quit":   "ctrl+c 離開",

	"quick.1": "我還有什麼沒做？",
	"quick.2": "整理優先順序",
	"quick.3": "有什麼靈感？",

	"memory.empty":         "還沒有備忘紀錄",
	"memory.todos":         "待辦",
	"memory.ideas":         "靈感",
	"memory.ungrouped":     "未分組靈感",
	"memory.clear_all":     "清除全部",
	"memory.clear_confirm": "確定清除所有備忘？[y/N]",
	"memory.cleared":       "已清除所有備忘",
	"memory.clear_aborted": "未清除任何內容",
	"memory.deleted_todo":  "已刪除待辦：%s",
	"memory.deleted_idea":  "已刪除靈感：%s",
	"memory.not_found":     "找不到編號 %d 的項目",

	"tag.todo":  "待辦",
	"tag.idea":  "靈感",
	"tag.query": "整理",
	"tag.error": "錯誤",

	"error.transport":   "連線失敗：%s",
	"error.remote":      "錯誤：%s",
	"error.empty_reply": "抱歉，發生錯誤。",
	"error.busy":        "請等目前的回覆完成。",
	"error.key_set":     "API Key 狀態：已設定（長度%d）",
	"error.key_unset":   "API Key 狀態：未設定",

	"model.current":  "目前模型：%s",
	"model.switched": "已切換模型：%s",
	"model.list":     "可用模型：",

	"repl.help": `指令：
  /todos               列出待辦
  /ideas               列出靈感
  /memory              分組檢視備忘庫
  /delete-todo <id>    刪除待辦（其靈感的關聯會被清除）
  /delete-idea <id>    刪除靈感
  /clear               清除所有備忘
  /q <1-3>             送出快速提問
  /model [name]        顯示、列出或切換模型
  /lang <en|zh-TW>     切換介面語言
  /help                顯示說明
  /exit                離開`,
	"repl.unknown_command": "未知指令：%s（輸入 /help 查看）",
	"repl.usage":           "用法：%s",
	"repl.quick_invalid":   "快速提問編號須為 1-%d",
	"repl.lang_switched":   "語言：%s",
	"repl.bye":             "再見！",

	"startup.migrated":  "已將 %d 則舊備忘匯入為靈感",
	"startup.repl_mode": "以逐行模式執行",
}
