package sqlinline

const QSelectUserByID = `--sql 6e3b7f20-c4a9-4d85-92e6-0a1f8b5c37d4
select id, email, coalesce(name, ''), coalesce(locale, ''), coalesce(plan, 'free'), created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 91d204c8-7e5f-43ba-a0d9-6c82e4f1b735
select id, email, coalesce(name, ''), coalesce(locale, ''), coalesce(plan, 'free'), created_at, updated_at
from users
where lower(email) = lower($1::text)
limit 1;
`

const QUpdateUserPlan = `--sql 48c1e9a7-25d6-4f03-b8c4-d97a0e632f18
update users
set plan = $2::text,
    updated_at = now()
where id = $1::uuid
returning id, email, coalesce(plan, 'free');
`
