package category

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type PaymentMethodsResponse struct {
	PaymentMethods []*PaymentMethod `json:"paymentMethods"`
}
