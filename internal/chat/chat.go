package chat

import (
	"context"
	"log"
	"strings"
)

const fallbackReply = "Maaf, saya belum bisa menjawab itu. Silakan hubungi kami di WhatsApp untuk bantuan lebih lanjut."

type rule struct {
	keywords []string
	reply    string
}

// defaultRules answer the questions the shop gets every day; anything else
// goes to the generative API.
var defaultRules = []rule{
	{
		keywords: []string{"halo", "hai", "hello", "selamat"},
		reply:    "Halo! Selamat datang di toko batik kami. Ada yang bisa saya bantu?",
	},
	{
		keywords: []string{"harga", "price", "berapa"},
		reply:    "Harga setiap kain tercantum di halaman produk. Kain cap mulai Rp 95.000, kain tulis mulai Rp 250.000.",
	},
	{
		keywords: []string{"kirim", "ongkir", "shipping", "pengiriman"},
		reply:    "Kami mengirim ke seluruh Indonesia. Pesanan diproses dalam 1-2 hari kerja setelah pembayaran.",
	},
	{
		keywords: []string{"bayar", "pembayaran", "payment", "transfer"},
		reply:    "Pembayaran dilakukan lewat halaman checkout: transfer bank, e-wallet, dan kartu diterima.",
	},
	{
		keywords: []string{"retur", "kembali", "refund", "tukar"},
		reply:    "Barang dapat ditukar dalam 7 hari bila ada cacat produksi. Simpan bukti pembelian Anda.",
	},
}

// Generator produces a free-text answer when no canned reply matches.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	rules []rule
	gen   Generator
}

func NewService(gen Generator) *Service {
	return &Service{rules: defaultRules, gen: gen}
}

// Reply answers a visitor message: keyword match first, generative API for
// free text, and a polite fallback when the API is unreachable.
func (s *Service) Reply(ctx context.Context, message string) string {
	lower := strings.ToLower(message)
	for _, r := range s.rules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.reply
			}
		}
	}

	if s.gen != nil {
		out, err := s.gen.Generate(ctx, message)
		if err == nil && out != "" {
			return out
		}
		if err != nil {
			log.Printf("chat: generative reply failed: %v", err)
		}
	}
	return fallbackReply
}
