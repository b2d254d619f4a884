package domain

// KeyPrefix namespaces all jurex keys in the corpus store.
const KeyPrefix = "jurex:"
