package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Converting %s":              "%s を変換中",
		"Decoding image":             "画像をデコード中",
		"Decoded %dx%d image (%d-bit)": "%dx%d 画像をデコードしました (%d ビット)",
		"Encoding %s output":         "%s 出力をエンコード中",
		"Output saved to %s":         "出力を %s に保存しました",
		"Exif saved to %s":           "Exifを %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Decode stage
		"Parsed container: brand %s, %d items": "コンテナ解析完了: ブランド %s, %d アイテム",
		"Decoded image: %dx%d, %d-bit":         "デコード完了: %dx%d, %d ビット",

		// Render stage
		"Applying display transform: rotate %d, mirror %d": "表示変換を適用: 回転 %d, ミラー %d",
		"Scaled to %dx%d": "%dx%d にスケーリングしました",

		// Export stage
		"Encoded %s: %d bytes": "%s エンコード完了: %d バイト",

		// Warnings
		"No Exif metadata: %s": "Exifメタデータがありません: %s",

		// Errors
		"Failed to read input: %s":   "入力の読み込みに失敗しました: %s",
		"Failed to decode image: %s": "画像のデコードに失敗しました: %s",
		"Failed to render image: %s": "画像のレンダリングに失敗しました: %s",
		"Failed to encode output: %s": "出力のエンコードに失敗しました: %s",
		"Failed to write output: %s": "出力の書き込みに失敗しました: %s",
	})
}
