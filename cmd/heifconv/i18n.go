// Package main provides localization for the heifconv CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Convert HEIF/AVIF still images to PNG, JPEG, BMP or TIFF": "HEIF/AVIF静止画をPNG、JPEG、BMP、TIFFに変換",

		// Info command
		"Print the container structure without decoding": "デコードせずにコンテナ構造を表示",

		// Flags
		"Output file path (default: input with new extension)":              "出力ファイルパス（デフォルト: 入力の拡張子を変更）",
		"Output format: png, jpeg, bmp, tiff (default: from output extension)": "出力フォーマット: png, jpeg, bmp, tiff（デフォルト: 出力拡張子から判定）",
		"JPEG quality (1-100)":                                 "JPEG品質（1-100）",
		"Scale output to this width, preserving aspect ratio":  "アスペクト比を保ってこの幅にスケーリング",
		"Decode the thumbnail instead of the primary image":    "プライマリ画像の代わりにサムネイルをデコード",
		"Enable strict bitstream validation":                   "厳密なビットストリーム検証を有効化",
		"Skip the container's rotation and mirror transforms":  "コンテナの回転・ミラー変換をスキップ",
		"Write the Exif metadata to this file":                 "Exifメタデータをこのファイルに書き出し",
		"Write a Markdown conversion summary to this file":     "Markdown形式の変換サマリーをこのファイルに書き出し",
		"Load settings from a YAML file":                       "YAMLファイルから設定を読み込み",
		"Path to the FFmpeg executable":                        "FFmpeg実行ファイルのパス",
		"Save intermediate decode results":                     "デコードの中間結果を保存",
		"Directory for debug output":                           "デバッグ出力用ディレクトリ",
		"Log level (debug, info, warn, error)":                 "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                              "すべてのログ出力を抑制",

		// Errors
		"input file required": "入力ファイルを指定してください",
	})
}
