// Package catalog is the static reference data for bank issuers and the
// card products each of them offers.
package catalog

import "sort"

// GenericIssuer is used for accounts without a specific institution.
const GenericIssuer = "generic"

type Brand string

const (
	Mastercard   Brand = "mastercard"
	Visa         Brand = "visa"
	Elo          Brand = "elo"
	Amex         Brand = "amex"
	GenericBrand Brand = "generic"
)

type Tier string

const (
	Standard Tier = "Standard"
	Gold     Tier = "Gold"
	Platinum Tier = "Platinum"
	Black    Tier = "Black"
	Infinite Tier = "Infinite"
	Nanquim  Tier = "Nanquim"
)

type Issuer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Logo  string `json:"logo"`
}

type Product struct {
	ID       string `json:"id"`
	IssuerID string `json:"issuer_id"`
	Name     string `json:"name"`
	Brand    Brand  `json:"brand"`
	Tier     Tier   `json:"tier"`
}

var issuers = []Issuer{
	{"banco_do_brasil", "Banco do Brasil", "#F7D700", "/logos/bb.svg"},
	{"nubank", "Nubank", "#8A05BE", "/logos/nubank.svg"},
	{"itau_unibanco", "Itaú", "#EC7000", "/logos/itau.svg"},
	{"bradesco", "Bradesco", "#CC092F", "/logos/bradesco.svg"},
	{"santander", "Santander", "#D50000", "/logos/santander.svg"},
	{"caixa", "Caixa", "#005CA8", "/logos/caixa.svg"},
	{"banco_inter", "Inter", "#FF7A00", "/logos/inter.svg"},
	{"c6_bank", "C6 Bank", "#000000", "/logos/c6.svg"},
	{"xp_investimentos", "XP", "#1A1A1A", "/logos/xp.svg"},
	{"picpay", "PicPay", "#21C25E", "/logos/picpay.svg"},
	{"mercado_pago", "Mercado Pago", "#00B1EA", "/logos/mercadopago.svg"},
	{"neon", "Neon", "#00A5E3", "/logos/neon.svg"},
	{"sicredi", "Sicredi", "#4CAF50", "/logos/sicredi.svg"},
	{"sicoob", "Sicoob", "#006634", "/logos/sicoob.svg"},
	{"porto_bank", "Porto Bank", "#004691", "/logos/porto.svg"},
	{GenericIssuer, "Conta", "#4B5563", "/logos/generic.svg"},
}

var products = []Product{
	{"nubank_std", "nubank", "Nubank (Crédito)", Mastercard, Standard},
	{"nubank_uv", "nubank", "Nubank Ultravioleta", Mastercard, Black},

	{"itau_std", "itau_unibanco", "Itaucard (Internacional/Gold/Platinum)", GenericBrand, Standard},
	{"itau_latam_gold", "itau_unibanco", "Itaucard Latam Pass (Gold)", GenericBrand, Gold},
	{"itau_latam_plat", "itau_unibanco", "Itaucard Latam Pass (Platinum)", GenericBrand, Platinum},
	{"itau_latam_black", "itau_unibanco", "Itaucard Latam Pass (Black)", Mastercard, Black},
	{"itau_latam_inf", "itau_unibanco", "Itaucard Latam Pass (Infinite)", Visa, Infinite},
	{"itau_azul_inter", "itau_unibanco", "Itaucard Azul (Internacional)", GenericBrand, Standard},
	{"itau_azul_gold", "itau_unibanco", "Itaucard Azul (Gold)", GenericBrand, Gold},
	{"itau_azul_plat", "itau_unibanco", "Itaucard Azul (Platinum)", GenericBrand, Platinum},
	{"itau_azul_inf", "itau_unibanco", "Itaucard Azul (Infinite)", Visa, Infinite},
	{"itau_pda_gold", "itau_unibanco", "Pão de Açúcar (Gold)", GenericBrand, Gold},
	{"itau_pda_plat", "itau_unibanco", "Pão de Açúcar (Platinum)", GenericBrand, Platinum},
	{"itau_pda_black", "itau_unibanco", "Pão de Açúcar (Black)", Mastercard, Black},
	{"itau_personnalite", "itau_unibanco", "Personnalité (Black/Infinite)", GenericBrand, Black},
	{"itau_theone", "itau_unibanco", "The One (Black/Infinite)", GenericBrand, Black},

	{"bradesco_std", "bradesco", "Bradesco (Internacional/Gold)", GenericBrand, Standard},
	{"bradesco_plat", "bradesco", "Bradesco (Platinum)", GenericBrand, Platinum},
	{"bradesco_black", "bradesco", "Bradesco (Black)", Mastercard, Black},
	{"bradesco_inf", "bradesco", "Bradesco (Infinite)", Visa, Infinite},
	{"bradesco_elo_nanquim", "bradesco", "Elo Nanquim", Elo, Nanquim},
	{"bradesco_aeternum", "bradesco", "Aeternum Visa Infinite", Visa, Infinite},
	{"bradesco_amex_green", "bradesco", "American Express (Green)", Amex, Standard},
	{"bradesco_amex_gold", "bradesco", "American Express (Gold)", Amex, Gold},
	{"bradesco_amex_plat", "bradesco", "American Express (Platinum)", Amex, Platinum},
	{"bradesco_smiles_gold", "bradesco", "Smiles (Gold)", GenericBrand, Gold},
	{"bradesco_smiles_plat", "bradesco", "Smiles (Platinum)", GenericBrand, Platinum},
	{"bradesco_smiles_inf", "bradesco", "Smiles (Infinite)", GenericBrand, Infinite},

	{"bb_ourocard_std", "banco_do_brasil", "Ourocard (Internacional/Gold)", GenericBrand, Standard},
	{"bb_ourocard_plat", "banco_do_brasil", "Ourocard (Platinum)", GenericBrand, Platinum},
	{"bb_ourocard_inf", "banco_do_brasil", "Ourocard Visa Infinite", Visa, Infinite},
	{"bb_altus_inf", "banco_do_brasil", "Altus Visa Infinite", Visa, Infinite},

	{"santander_sx", "santander", "Santander SX", GenericBrand, Standard},
	{"santander_free", "santander", "Santander Free", GenericBrand, Standard},
	{"santander_unique", "santander", "Santander Unique (Infinite/Black)", GenericBrand, Black},
	{"santander_unlimited", "santander", "Santander Unlimited (Infinite/Black)", GenericBrand, Black},
	{"santander_decolar", "santander", "Decolar (Gold/Platinum)", GenericBrand, Gold},
	{"santander_decolar_inf", "santander", "Decolar (Infinite/Black)", GenericBrand, Infinite},
	{"santander_aadvantage", "santander", "AAdvantage (Gold/Platinum)", GenericBrand, Gold},
	{"santander_aadvantage_black", "santander", "AAdvantage (Black)", Mastercard, Black},

	{"caixa_sim", "caixa", "Caixa Sim", GenericBrand, Standard},
	{"caixa_uni", "caixa", "Caixa Universitário", GenericBrand, Standard},
	{"caixa_gold_plat", "caixa", "Caixa (Gold/Platinum)", GenericBrand, Gold},
	{"caixa_inf", "caixa", "Caixa Visa Infinite", Visa, Infinite},
	{"caixa_elo_nanquim", "caixa", "Caixa Elo Nanquim", Elo, Nanquim},
	{"caixa_icone", "caixa", "Caixa Ícone", GenericBrand, Black},

	{"inter_gold", "banco_inter", "Inter Gold", Mastercard, Gold},
	{"inter_plat", "banco_inter", "Inter Platinum", Mastercard, Platinum},
	{"inter_black", "banco_inter", "Inter Black", Mastercard, Black},
	{"inter_win", "banco_inter", "Inter Win", Mastercard, Black},

	{"c6_std", "c6_bank", "C6 (básico)", Mastercard, Standard},
	{"c6_plat", "c6_bank", "C6 Platinum", Mastercard, Platinum},
	{"c6_black", "c6_bank", "C6 Black", Mastercard, Black},
	{"c6_carbon", "c6_bank", "C6 Carbon", Mastercard, Black},

	{"xp_inf", "xp_investimentos", "XP Visa Infinite", Visa, Infinite},
	{"xp_inf_privilege", "xp_investimentos", "XP Visa Infinite Privilege", Visa, Infinite},

	{"picpay_std", "picpay", "PicPay Card", Mastercard, Standard},
	{"picpay_gold", "picpay", "PicPay Card Gold", Mastercard, Gold},

	{"mp_std", "mercado_pago", "Mercado Pago Crédito", Visa, Standard},
	{"mp_plat", "mercado_pago", "Mercado Pago Platinum", Visa, Platinum},

	{"neon_std", "neon", "Neon Crédito", Visa, Standard},
	{"neon_gold", "neon", "Neon Gold", Visa, Gold},

	{"sicredi_std", "sicredi", "Sicredi (Clássico/Gold/Platinum)", GenericBrand, Standard},
	{"sicredi_inf", "sicredi", "Sicredi Visa Infinite", Visa, Infinite},
	{"sicredi_black", "sicredi", "Sicredi Mastercard Black", Mastercard, Black},

	{"sicoob_std", "sicoob", "Sicoobcard (Clássico/Gold/Platinum)", GenericBrand, Standard},
	{"sicoob_black", "sicoob", "Sicoobcard Mastercard Black", Mastercard, Black},

	{"porto_std", "porto_bank", "Porto Bank (Anuidade Grátis)", GenericBrand, Standard},
	{"porto_gold", "porto_bank", "Porto Bank Gold", GenericBrand, Gold},
	{"porto_plat", "porto_bank", "Porto Bank Platinum", GenericBrand, Platinum},

	// fallbacks per issuer
	{"nubank_generic", "nubank", "Outro Cartão Nubank", GenericBrand, Standard},
	{"itau_generic", "itau_unibanco", "Outro Cartão Itaú", GenericBrand, Standard},
	{"bradesco_generic", "bradesco", "Outro Cartão Bradesco", GenericBrand, Standard},
	{"bb_generic", "banco_do_brasil", "Outro Cartão BB", GenericBrand, Standard},
	{"santander_generic", "santander", "Outro Cartão Santander", GenericBrand, Standard},
	{"caixa_generic", "caixa", "Outro Cartão Caixa", GenericBrand, Standard},
	{"inter_generic", "banco_inter", "Outro Cartão Inter", GenericBrand, Standard},
	{"c6_generic", "c6_bank", "Outro Cartão C6", GenericBrand, Standard},
	{"xp_generic", "xp_investimentos", "Outro Cartão XP", GenericBrand, Standard},
	{"picpay_generic", "picpay", "Outro Cartão PicPay", GenericBrand, Standard},
	{"mp_generic", "mercado_pago", "Outro Cartão Mercado Pago", GenericBrand, Standard},
	{"neon_generic", "neon", "Outro Cartão Neon", GenericBrand, Standard},
	{"sicredi_generic", "sicredi", "Outro Cartão Sicredi", GenericBrand, Standard},
	{"sicoob_generic", "sicoob", "Outro Cartão Sicoob", GenericBrand, Standard},
	{"porto_generic", "porto_bank", "Outro Cartão Porto Bank", GenericBrand, Standard},

	{"generic_card", GenericIssuer, "Outro Cartão de Crédito", GenericBrand, Standard},
}

var (
	issuerByID  = make(map[string]Issuer, len(issuers))
	productByID = make(map[string]Product, len(products))
)

func init() {
	for _, i := range issuers {
		issuerByID[i.ID] = i
	}
	for _, p := range products {
		productByID[p.ID] = p
	}
}

// Issuers returns every issuer sorted by display name, generic last.
func Issuers() []Issuer {
	out := make([]Issuer, 0, len(issuers))
	for _, i := range issuers {
		if i.ID != GenericIssuer {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return append(out, issuerByID[GenericIssuer])
}

// LookupIssuer finds an issuer by id.
func LookupIssuer(id string) (Issuer, bool) {
	i, ok := issuerByID[id]
	return i, ok
}

// LookupProduct finds a card product by id.
func LookupProduct(id string) (Product, bool) {
	p, ok := productByID[id]
	return p, ok
}

// ProductsByIssuer lists the products of an issuer, including its fallback
// product. An empty or generic issuer gets the generic products.
func ProductsByIssuer(issuerID string) []Product {
	if issuerID == "" {
		issuerID = GenericIssuer
	}
	var out []Product
	for _, p := range products {
		if p.IssuerID == issuerID {
			out = append(out, p)
		}
	}
	return out
}

// ProductAllowed reports whether productID can back a payment method of an
// account issued by accountIssuer. Accounts without a specific issuer accept
// any product.
func ProductAllowed(productID, accountIssuer string) bool {
	p, ok := productByID[productID]
	if !ok {
		return false
	}
	if accountIssuer == "" || accountIssuer == GenericIssuer {
		return true
	}
	return p.IssuerID == accountIssuer || p.IssuerID == GenericIssuer
}
