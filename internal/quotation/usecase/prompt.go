package usecase

import "fmt"

// BuildPrompt embeds both inputs verbatim; nothing is escaped
func BuildPrompt(emailBody, companyInfo string) string {
	return fmt.Sprintf(`以下のメール本文と見積書発行元の会社情報に基づき、見積書作成に必要なデータをJSON形式で抽出・生成してください。
特に、明細の単価と金額は、一般的な市場価格や既知の価格に基づいて生成してください。
返答は**JSONデータのみ**にしてください。

【メール本文】
%s

【見積書発行元の会社情報】
%s

【JSONスキーマ】
{
  "発行日": "YYYY年MM月DD日",
  "見積書番号": "任意で生成",
  "見積先名": "メール本文から抽出",
  "見積先住所": "メール本文から可能な限り抽出",
  "見積元情報": "入力された会社情報をそのまま使用",
  "有効期限": "YYYY年MM月DD日",
  "納期": "〇〇日以内 または YYYY年MM月DD日",
  "明細": [
    {"品目": "コンサルティング費用", "単価": 250000, "数量": 1, "単位": "式", "税区分": "税別"}
  ],
  "合計金額_税抜": 500000,
  "合計金額_税込": 550000
}
`, emailBody, companyInfo)
}
